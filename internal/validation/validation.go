// Package validation checks an edit model against the program schema before
// anything is written to the store.
package validation

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"gradtrack/internal/domain"
)

//go:embed program.schema.json
var programSchema []byte

// ErrValidation is matched by every *Error via errors.Is.
var ErrValidation = errors.New("VALIDATION_FAILED")

// FieldError is one schema violation, keyed by the edit model's json field name.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is a structured ValidationFailure. Writes are rejected locally when
// one is returned.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool { return target == ErrValidation }

// Has reports whether field has at least one violation.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// formatMessages describe the optional fields that must be empty or well formed.
var formatMessages = map[string]string{
	"contact_email":        "must be empty or a plain email address",
	"application_deadline": "must be empty or a YYYY-MM-DD date",
	"decision_date":        "must be empty or a YYYY-MM-DD date",
}

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiled() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(programSchema))
	})
	return schema, schemaErr
}

// Validate returns nil or an *Error listing every violation.
func Validate(p domain.Program) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("validation: compile schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(p))
	if err != nil {
		return fmt.Errorf("validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	// an "empty or formatted" field fails every anyOf branch; report it once
	anyOf := map[string]bool{}
	for _, re := range result.Errors() {
		if re.Type() == "number_any_of" {
			anyOf[re.Field()] = true
		}
	}

	seen := map[string]bool{}
	out := &Error{}
	for _, re := range result.Errors() {
		fe := FieldError{
			Field:   re.Field(),
			Code:    re.Type(),
			Message: re.Description(),
		}
		if anyOf[fe.Field] {
			fe.Code = "format"
			fe.Message = formatMessages[fe.Field]
			if fe.Message == "" {
				fe.Message = "has an invalid format"
			}
		}
		key := fe.Field + "|" + fe.Code
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Fields = append(out.Fields, fe)
	}
	sort.SliceStable(out.Fields, func(i, j int) bool { return out.Fields[i].Field < out.Fields[j].Field })
	return out
}
