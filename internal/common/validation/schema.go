// Package validation checks request inputs against JSON schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema reused across requests.
type Schema struct {
	schema *gojsonschema.Schema
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// codes maps gojsonschema error types onto the codes reported to callers.
var codes = map[string]string{
	"required":                        "REQUIRED_FIELD_MISSING",
	"invalid_type":                    "INVALID_TYPE",
	"string_gte":                      "MIN_LENGTH_VIOLATION",
	"string_lte":                      "MAX_LENGTH_VIOLATION",
	"pattern":                         "PATTERN_MISMATCH",
	"format":                          "INVALID_FORMAT",
	"additional_property_not_allowed": "EXTRA_FIELD",
}

// Compile builds a schema from a Go value shaped like a JSON schema document.
func Compile(doc map[string]interface{}) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(doc map[string]interface{}) *Schema {
	s, err := Compile(doc)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks input against the schema with one error per violation.
func (s *Schema) Validate(input map[string]interface{}) *ValidationResult {
	res, err := s.schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "SCHEMA_EVALUATION_FAILED",
		}}}
	}

	errors := make([]ValidationError, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		errors = append(errors, toValidationError(e))
	}
	return &ValidationResult{
		Valid:  res.Valid(),
		Errors: errors,
	}
}

func toValidationError(e gojsonschema.ResultError) ValidationError {
	field := e.Field()
	message := e.Description()
	switch e.Type() {
	case "required":
		if p, ok := e.Details()["property"].(string); ok {
			field = p
		}
		message = "required field missing"
	case "additional_property_not_allowed":
		if p, ok := e.Details()["property"].(string); ok {
			field = p
		}
		message = "field not allowed in schema"
	}

	code, ok := codes[e.Type()]
	if !ok {
		code = strings.ToUpper(e.Type())
	}
	return ValidationError{Field: field, Message: message, Code: code}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}
