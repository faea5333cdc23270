// internal/activities/validation.go
package activities

import (
	"strings"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/validation"
)

const maxEmailLength = 254

// inputSchema accepts any non-blank participant identifier; seeded rosters
// are not required to hold well-formed addresses.
var inputSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"email": map[string]interface{}{
			"type":        "string",
			"description": "Student email address",
			"minLength":   1,
			"maxLength":   maxEmailLength,
		},
	},
	"required":             []string{"email"},
	"additionalProperties": false,
})

// addressSchema is applied only when strict email checking is configured.
var addressSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"email": map[string]interface{}{
			"type":   "string",
			"format": "email",
		},
	},
})

// validateEmail rejects a missing or blank email.
func validateEmail(email string) error {
	input := map[string]interface{}{}
	if strings.TrimSpace(email) != "" {
		input["email"] = email
	}
	return check(inputSchema, input)
}

// validateAddress rejects an email that does not parse as an address.
func validateAddress(email string) error {
	return check(addressSchema, map[string]interface{}{"email": email})
}

func check(schema *validation.Schema, input map[string]interface{}) error {
	result := schema.Validate(input)
	if !result.Valid {
		return errors.NewValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}
