package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFiles embed.FS

// Schema names.
const (
	SchemaCommand = "command"
	SchemaNewGame = "new_game"
)

// Validator checks request bodies against the embedded JSON schemas before
// they are decoded.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	entries, err := schemaFiles.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	schemas := make(map[string]*jsonschema.Schema, len(entries))
	for _, entry := range entries {
		filename := entry.Name()
		data, err := schemaFiles.ReadFile("schemas/" + filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", filename, err)
		}

		schemaURL := "https://wolfgoatpig.dev/schemas/" + filename
		if err := compiler.AddResource(schemaURL, strings.NewReader(string(data))); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", filename, err)
		}
		schema, err := compiler.Compile(schemaURL)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", filename, err)
		}
		schemas[strings.TrimSuffix(filename, ".json")] = schema
	}
	return &Validator{schemas: schemas}, nil
}

// Validate checks data against the named schema.
func (v *Validator) Validate(schemaName string, data []byte) error {
	schema, ok := v.schemas[schemaName]
	if !ok {
		return fmt.Errorf("schema not found: %s", schemaName)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &requestError{msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := schema.Validate(doc); err != nil {
		return &requestError{msg: schemaMessage(err)}
	}
	return nil
}

// schemaMessage flattens a validation error to its most specific cause.
func schemaMessage(err error) string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	loc := verr.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, verr.Message)
}

// requestError is a malformed request body.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }
