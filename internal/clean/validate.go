package clean

// validate.go - invariant checks on merged records

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/leapstack-labs/salesprep/internal/dataset"
)

// Violation is one invariant broken by one or more rows. Rows are zero-based
// indexes into the validated slice.
type Violation struct {
	Invariant string `json:"invariant"`
	Rows       []int  `json:"rows"`
}

// ValidationError lists every violated invariant.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s (%d rows)", v.Invariant, len(v.Rows))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

var tagOperators = map[string]string{
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
}

// invariantName renders a field error as e.g. "price > 0".
func invariantName(fe validator.FieldError) string {
	op, ok := tagOperators[fe.Tag()]
	if !ok {
		return fe.Field() + " " + fe.Tag()
	}
	return fmt.Sprintf("%s %s %s", fe.Field(), op, fe.Param())
}

// Validate checks the record invariants (price > 0, quantity > 0,
// total_sales >= 0) on every row. It returns nil or a *ValidationError.
func Validate(records []dataset.SalesRecord) error {
	v := recordValidator()
	byInvariant := make(map[string][]int)

	for i := range records {
		err := v.Struct(&records[i])
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate row %d: %w", i, err)
		}
		for _, fe := range fieldErrs {
			name := invariantName(fe)
			byInvariant[name] = append(byInvariant[name], i)
		}
	}

	if len(byInvariant) == 0 {
		return nil
	}

	verr := &ValidationError{}
	for name, rows := range byInvariant {
		verr.Violations = append(verr.Violations, Violation{Invariant: name, Rows: rows})
	}
	sort.Slice(verr.Violations, func(i, j int) bool {
		return verr.Violations[i].Invariant < verr.Violations[j].Invariant
	})
	return verr
}
