package service

import (
	"errors"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// notFoundOr maps a missing row to notFound and anything else to Internal.
func notFoundOr(err error, notFound *util.AppError, op string) error {
	if isNotFound(err) {
		return notFound
	}
	return util.NewInternal(op, err)
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	return string(util.KindOf(err))
}
