package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// durationPattern matches the strings time.ParseDuration accepts.
const durationPattern = `^[-+]?(0|([0-9]+(\.[0-9]*)?|\.[0-9]+)(ns|us|µs|ms|s|m|h))+$`

var durationType = reflect.TypeOf(time.Duration(0))

// Schema returns the JSON schema describing the config file. Every field is
// optional; Load fills missing values from Default.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Mapper:                     mapType,
	}
	s := r.Reflect(&Config{})
	s.Title = "streamkit configuration"
	return s
}

// mapType describes durations as the strings the loaders decode.
func mapType(t reflect.Type) *jsonschema.Schema {
	if t == durationType {
		return &jsonschema.Schema{
			Type:        "string",
			Format:      "duration",
			Pattern:     durationPattern,
			Description: `Go duration string, e.g. "500ms" or "30s"`,
		}
	}
	return nil
}

// SchemaJSON returns Schema() as indented JSON.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal config schema: %w", err)
	}
	return data, nil
}
