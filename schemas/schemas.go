// Package schemas embeds the JSON Schemas for grid files and project config.
package schemas

import _ "embed"

// GridSchemaJSON describes YAML/JSON acceptance grid files.
//
//go:embed grid.schema.json
var GridSchemaJSON string

// ConfigSchemaJSON describes .acceptbench.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
