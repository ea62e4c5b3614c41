package handler

import (
	"errors"

	"coins-wallet/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// bindError maps a ShouldBindJSON failure to a client error. Validator
// failures mean a required parameter is missing or malformed; anything else
// is an unreadable body.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.Validation("Invalid request, parameters missing")
	}
	return apperror.Validation("Invalid request body")
}
