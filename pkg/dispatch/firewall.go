package dispatch

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaFirewall validates a tool's input against a compiled JSON Schema
// before the tool handler runs, the same compile-once-validate-many shape
// core/pkg/firewall uses for its tool allowlist schemas.
type SchemaFirewall struct {
	schemas map[string]*jsonschema.Schema
}

// NewSchemaFirewall returns an empty SchemaFirewall; every tool passes
// until a schema is registered for it.
func NewSchemaFirewall() *SchemaFirewall {
	return &SchemaFirewall{schemas: make(map[string]*jsonschema.Schema)}
}

// RegisterSchema compiles schemaJSON (a JSON Schema 2020-12 document) and
// binds it to toolName. An empty schemaJSON clears any schema previously
// bound to toolName.
func (f *SchemaFirewall) RegisterSchema(toolName, schemaJSON string) error {
	if schemaJSON == "" {
		delete(f.schemas, toolName)
		return nil
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://adamos.local/tool_input/%s.schema.json", toolName)
	if err := c.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("dispatch: schema load failed for %q: %w", toolName, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return fmt.Errorf("dispatch: schema compile failed for %q: %w", toolName, err)
	}
	f.schemas[toolName] = compiled
	return nil
}

// Validate checks in against toolName's registered schema. A tool with no
// registered schema always passes; this firewall narrows, it never widens
// what the allowlist in registry.go permits.
func (f *SchemaFirewall) Validate(toolName string, in toolInput) error {
	schema, ok := f.schemas[toolName]
	if !ok || schema == nil {
		return nil
	}
	if err := schema.Validate(map[string]any(in)); err != nil {
		return fmt.Errorf("dispatch: tool_input schema validation failed for %q: %w", toolName, err)
	}
	return nil
}

// DefaultToolInputSchemas returns the JSON Schema documents this runtime
// ships for its most commonly misused tool inputs. Tools absent from this
// map are left unvalidated by the firewall (the allowlist in registry.go
// still gates them).
func DefaultToolInputSchemas() map[string]string {
	return map[string]string{
		"artifact.ingest": `{
			"type": "object",
			"required": ["text"],
			"properties": {
				"text": {"type": "string", "minLength": 1},
				"created_at_utc": {"type": "string"},
				"artifact_id": {"type": "string"}
			}
		}`,
		"inference.request_emit": `{
			"type": "object",
			"required": ["provider", "model", "user_prompt", "snapshot_hash"],
			"properties": {
				"provider": {"type": "string", "minLength": 1},
				"model": {"type": "string", "minLength": 1},
				"system_prompt": {"type": "string"},
				"user_prompt": {"type": "string", "minLength": 1},
				"temperature": {"type": "number"},
				"max_tokens": {"type": "integer", "minimum": 0},
				"snapshot_hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"}
			}
		}`,
		"inference.receipt_emit": `{
			"type": "object",
			"required": ["receipt_id", "request_id", "request_hash", "snapshot_hash", "provider", "model"],
			"properties": {
				"receipt_id": {"type": "string", "minLength": 1},
				"request_id": {"type": "string", "minLength": 1},
				"request_hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
				"snapshot_hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
				"provider": {"type": "string", "minLength": 1},
				"model": {"type": "string", "minLength": 1},
				"response_id": {"type": "string"},
				"error_id": {"type": "string"}
			}
		}`,
	}
}
