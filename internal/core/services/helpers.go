package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

func newID() string {
	return uuid.NewString()
}
