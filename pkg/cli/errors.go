package cli

import (
	"errors"

	"lakewriter/internal/domain"
)

// errorKind names the domain error class of err for JSON error output.
func errorKind(err error) string {
	var (
		notFound    *domain.NotFoundError
		validation  *domain.ValidationError
		emptyInput  *domain.EmptyInputError
		value       *domain.InvalidArgumentValueError
		combination *domain.InvalidArgumentCombinationError
		duplicates  *domain.DuplicateColumnsError
		unsupported *domain.UnsupportedTypeError
		cast        *domain.CastError
	)
	switch {
	case errors.As(err, &emptyInput):
		return "empty_input"
	case errors.As(err, &value):
		return "invalid_argument_value"
	case errors.As(err, &combination):
		return "invalid_argument_combination"
	case errors.As(err, &duplicates):
		return "duplicate_columns"
	case errors.As(err, &unsupported):
		return "unsupported_type"
	case errors.As(err, &cast):
		return "cast"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &validation):
		return "validation"
	default:
		return ""
	}
}
