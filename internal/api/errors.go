package api

import (
	"errors"
	"net/http"

	"lakewriter/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var emptyInput *domain.EmptyInputError
	var invalidValue *domain.InvalidArgumentValueError
	var invalidCombination *domain.InvalidArgumentCombinationError
	var duplicates *domain.DuplicateColumnsError
	var unsupported *domain.UnsupportedTypeError
	var cast *domain.CastError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &emptyInput),
		errors.As(err, &invalidValue),
		errors.As(err, &invalidCombination),
		errors.As(err, &duplicates),
		errors.As(err, &unsupported),
		errors.As(err, &cast):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
