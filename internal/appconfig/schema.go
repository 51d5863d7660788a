// internal/appconfig/schema.go
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema constrains the config file shape before it is decoded. Flags
// layered on top are range-checked separately by Validate.
var configSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"model":           map[string]any{"type": "string"},
		"prompt":          map[string]any{"type": "string"},
		"serialRuns":      map[string]any{"type": "integer", "minimum": 0},
		"parallelRuns":    map[string]any{"type": "integer", "minimum": 0},
		"maxLoadedModels": map[string]any{"type": "integer", "minimum": 1},
		"numParallel":     map[string]any{"type": "integer", "minimum": 1},
		"contextLength":   map[string]any{"type": "integer", "minimum": 1},
		"maxQueue":        map[string]any{"type": "integer", "minimum": 1},
		"ollamaBinary":    map[string]any{"type": "string"},
		"markdown":        map[string]any{"type": "boolean"},
		"export":          map[string]any{"type": "string"},
		"debug":           map[string]any{"type": "boolean"},
		"logFile":         map[string]any{"type": "string"},
	},
}

// Load reads and validates the application configuration from the specified path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	if err := validateConfigBytes(data); err != nil {
		return Config{}, fmt.Errorf("config file %q: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	config.ConfigPath = path

	return config, nil
}

// validateConfigBytes checks raw config JSON against the embedded schema.
func validateConfigBytes(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
