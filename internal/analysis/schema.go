package analysis

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const modelOutputSchemaURL = "https://tirescan.local/schemas/model_output.json"

//go:embed schemas/model_output.json
var modelOutputSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadModelOutputSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(modelOutputSchemaURL, bytes.NewReader(modelOutputSchema)); err != nil {
			schemaErr = fmt.Errorf("load model output schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(modelOutputSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile model output schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateModelOutput checks raw model text against the documented output
// shape. Violations are advisory; the pipeline normalizes regardless.
func ValidateModelOutput(raw string) error {
	schema, err := loadModelOutputSchema()
	if err != nil {
		return err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return schema.Validate(doc)
}
