package service

import (
	"errors"
	"fmt"

	"github.com/BerniceZTT/crm_pipeline/repository"
	"github.com/BerniceZTT/crm_pipeline/utils"
)

// notFoundOr 将仓储的 ErrNotFound 转为业务 NotFound，其他错误附加上下文
func notFoundOr(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewNotFoundError(message)
	}
	return fmt.Errorf("%s: %w", message, err)
}
