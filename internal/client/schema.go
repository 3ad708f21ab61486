package client

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const envelopeSchemaURL = "https://schemas.ccadash.local/envelope.json"

// envelopeSchemaJSON describes the {success, data, message} wrapper returned by every backend endpoint
const envelopeSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"message": {"type": "string"}
	}
}`

var envelopeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(envelopeSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse envelope schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(envelopeSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add envelope schema: %w", err)
	}
	return compiler.Compile(envelopeSchemaURL)
})

// validateEnvelope is used in strict mode to reject 2xx bodies that are not a response envelope
func validateEnvelope(body []byte) error {
	schema, err := envelopeSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}

	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("response does not match the envelope schema: %w", err)
	}
	return nil
}
