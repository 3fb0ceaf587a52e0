package clients

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// predictResponseSchema describes a successful /predict body.
const predictResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["status"],
  "properties": {
    "status":     { "type": "string" },
    "confidence": { "type": ["string", "number", "null"] },
    "message":    { "type": ["string", "null"] },
    "input_received": {
      "type": "object",
      "properties": {
        "usia":   { "type": "integer" },
        "tinggi": { "type": "number" },
        "berat":  { "type": "number" },
        "gender": { "type": "string" }
      }
    }
  }
}`

type responseSchema struct {
	schema *gojsonschema.Schema
}

func newResponseSchema() (*responseSchema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(predictResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load response schema: %w", err)
	}
	return &responseSchema{schema: s}, nil
}

func (s *responseSchema) validate(raw []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
