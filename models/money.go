package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money 两位小数的金额，Mongo中以Decimal128保存，JSON中以字符串输出
type Money struct {
	decimal.Decimal
}

// NewMoney 由decimal创建金额，四舍五入到两位小数
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MoneyFromString 解析金额字符串
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

// MustMoney 测试与常量场景使用
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// IsPositive 金额是否大于0，nil视为0
func (m *Money) IsPositive() bool {
	return m != nil && m.Decimal.IsPositive()
}

// String 固定两位小数
func (m Money) String() string {
	return m.StringFixed(2)
}

// MarshalJSON 输出为字符串，如 "1000.00"
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed(2))
}

// UnmarshalJSON 同时接受数字和字符串
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.Decimal = d.Round(2)
	return nil
}

// MarshalBSONValue 以Decimal128写入
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(m.StringFixed(2))
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d)
}

// UnmarshalBSONValue 兼容聚合结果中的各种数值类型
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(rv.Decimal128().String())
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
	case bsontype.Double:
		m.Decimal = decimal.NewFromFloat(rv.Double()).Round(2)
	case bsontype.Int32:
		m.Decimal = decimal.NewFromInt32(rv.Int32())
	case bsontype.Int64:
		m.Decimal = decimal.NewFromInt(rv.Int64())
	case bsontype.String:
		d, err := decimal.NewFromString(rv.StringValue())
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
	case bsontype.Null:
		m.Decimal = decimal.Zero
	default:
		return fmt.Errorf("cannot decode %s into Money", t)
	}
	return nil
}
