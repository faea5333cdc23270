// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "mergington-activities/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed default_seed.json
var defaultSeed []byte

//go:embed seed.schema.json
var seedSchema []byte

// Default returns the seed compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return Parse(defaultSeed)
}

// LoadRegistry reads and validates a seed file. An empty path yields the
// default seed.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates raw JSON against the seed schema and the registry rules
// the schema cannot express.
func Parse(data []byte) (*ActivityRegistry, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(seedSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, apperrors.NewSeedInvalidError(fmt.Sprintf("schema evaluation: %v", err))
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, apperrors.NewSeedInvalidError(strings.Join(msgs, "; "))
	}

	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, apperrors.NewSeedInvalidError(err.Error())
	}

	if err := Validate(&reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate enforces unique activity names and unique participants per
// activity.
func Validate(reg *ActivityRegistry) error {
	if len(reg.Activities) == 0 {
		return apperrors.NewSeedInvalidError("registry contains no activities")
	}

	names := make(map[string]bool, len(reg.Activities))
	for _, activity := range reg.Activities {
		if activity.Name == "" {
			return apperrors.NewSeedInvalidError("activity missing required field: name")
		}
		if names[activity.Name] {
			return apperrors.NewSeedInvalidError(fmt.Sprintf("duplicate activity name: %s", activity.Name))
		}
		names[activity.Name] = true

		if activity.MaxParticipants < 0 {
			return apperrors.NewSeedInvalidError(fmt.Sprintf("activity %s has negative max_participants", activity.Name))
		}

		seen := make(map[string]bool, len(activity.Participants))
		for _, email := range activity.Participants {
			if seen[email] {
				return apperrors.NewSeedInvalidError(fmt.Sprintf("activity %s lists %s twice", activity.Name, email))
			}
			seen[email] = true
		}
	}
	return nil
}

// Save writes reg as indented JSON, stamping LastUpdated.
func Save(reg *ActivityRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
