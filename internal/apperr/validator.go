package apperr

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// JSONFieldName makes a validator report fields by their json names.
func JSONFieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

// FromValidator converts go-playground validation failures into a
// ValidationError. Any other error is returned unchanged with ok false.
func FromValidator(err error) (*ValidationError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	out := &ValidationError{Problems: make([]FieldProblem, 0, len(verrs))}
	for _, fe := range verrs {
		out.Problems = append(out.Problems, FieldProblem{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: RuleMessage(fe.Tag(), fe.Param()),
		})
	}
	return out, true
}
