package usecase

import (
	"errors"

	"storefront/internal/apperr"
	repo "storefront/internal/repository"
)

// ストアのエラーを包む。既にapperrならそのまま
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, repo.ErrDuplicate) {
		return apperr.Conflict(apperr.CodeDuplicate, "duplicate record")
	}
	return apperr.Upstream(err)
}

// ErrNotFoundだけ指定のNotFoundに置き換える
func notFoundOr(err error, code, message string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(code, message)
	}
	return storeErr(err)
}
