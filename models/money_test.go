package models

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMoneyJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"number", `1000`, `"1000.00"`},
		{"string", `"12.5"`, `"12.50"`},
		{"rounds", `1.005`, `"1.01"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			var m Money
			is.NoErr(json.Unmarshal([]byte(tt.in), &m))
			out, err := json.Marshal(m)
			is.NoErr(err)
			is.Equal(string(out), tt.want)
		})
	}
}

func TestMoneyInvalidJSON(t *testing.T) {
	is := is.New(t)
	var m Money
	is.True(json.Unmarshal([]byte(`"abc"`), &m) != nil)
}

func TestMoneyBSONDecimal128(t *testing.T) {
	is := is.New(t)
	amount := MustMoney("250.75")
	doc, err := bson.Marshal(Deal{Title: "t", Amount: &amount})
	is.NoErr(err)

	var raw bson.Raw = doc
	is.Equal(raw.Lookup("amount").Type, bson.TypeDecimal128)

	var back Deal
	is.NoErr(bson.Unmarshal(doc, &back))
	is.True(back.Amount != nil)
	is.True(back.Amount.Equal(amount.Decimal))
}

func TestMoneyIsPositive(t *testing.T) {
	is := is.New(t)
	var nilMoney *Money
	zero := MustMoney("0")
	pos := MustMoney("0.01")
	is.True(!nilMoney.IsPositive())
	is.True(!zero.IsPositive())
	is.True(pos.IsPositive())
}

func TestPageNormalize(t *testing.T) {
	is := is.New(t)
	p := PageRequest{}.Normalize()
	is.Equal(p, PageRequest{Page: 1, PageSize: 100})
	is.Equal(PageRequest{Page: 3, PageSize: 500}.Normalize().PageSize, int64(100))
	is.Equal(PageRequest{Page: 3, PageSize: 10}.Skip(), int64(20))

	page := NewPage([]int(nil), 21, PageRequest{Page: 1, PageSize: 10})
	is.Equal(page.TotalPages, int64(3))
	is.Equal(len(page.Items), 0)
	is.True(page.Items != nil)
}

func TestDealStageIndex(t *testing.T) {
	is := is.New(t)
	is.Equal(DealStageQualification.Index(), 0)
	is.Equal(DealStageClosed.Index(), 3)
	is.Equal(DealStage("won").Index(), -1)
	is.True(!DealStage("").Valid())
	is.True(DealStatusInProgress.Valid())
}
