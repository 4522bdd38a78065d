package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/acceptbench/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// gridSchema is the compiled JSON Schema for YAML/JSON grid files.
var gridSchema *jsonschema.Schema

// configSchema is the compiled JSON Schema for .acceptbench.yaml.
var configSchema *jsonschema.Schema

func init() {
	gridSchema = mustCompileSchema(schemas.GridSchemaJSON, "grid.schema.json")
	configSchema = mustCompileSchema(schemas.ConfigSchemaJSON, "config.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// GridFileExtensions are the structured grid formats checked against the schema.
var GridFileExtensions = []string{".yaml", ".yml", ".json"}

// IsStructuredGrid reports whether path is a YAML or JSON grid file.
func IsStructuredGrid(path string) bool {
	return slices.Contains(GridFileExtensions, strings.ToLower(filepath.Ext(path)))
}

// ValidateGridFile validates a YAML or JSON grid file against the grid schema.
func ValidateGridFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grid file: %w", err)
	}
	return ValidateGridBytes(data), nil
}

// ValidateGridDir validates every structured grid file directly inside dir.
// Files without errors are left out of the result; keys are base names.
func ValidateGridDir(dir string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading grid directory: %w", err)
	}

	gridErrs := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() || !IsStructuredGrid(e.Name()) {
			continue
		}
		errs, readErr := ValidateGridFile(filepath.Join(dir, e.Name()))
		if readErr != nil {
			continue
		}
		if len(errs) > 0 {
			gridErrs[e.Name()] = errs
		}
	}
	return gridErrs, nil
}

// ValidateGridBytes validates raw YAML or JSON bytes against the grid schema.
func ValidateGridBytes(data []byte) []string {
	return validateYAMLBytes(gridSchema, data)
}

// ValidateConfigBytes validates raw .acceptbench.yaml bytes.
func ValidateConfigBytes(data []byte) []string {
	return validateYAMLBytes(configSchema, data)
}

func validateYAMLBytes(schema *jsonschema.Schema, data []byte) []string {
	// JSON is valid YAML, so one decoder serves both formats.
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	if yamlDoc == nil {
		yamlDoc = map[string]any{}
	}

	return validateAgainstSchema(schema, convertToJSONCompatible(yamlDoc))
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible normalizes yaml.v3 output for the schema validator.
// Maps with non-string keys (a bare number used as a column name) are keyed
// by their printed form.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[fmt.Sprint(k)] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
