package backend

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed envelope.schema.json
var envelopeSchema []byte

var envelopeLoader = gojsonschema.NewBytesLoader(envelopeSchema)

// maxSchemaErrors bounds how many violations are quoted in an error.
const maxSchemaErrors = 3

// validateEnvelope checks a response body against the envelope schema.
func validateEnvelope(body []byte) error {
	result, err := gojsonschema.Validate(envelopeLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	msgs := make([]string, 0, min(len(violations), maxSchemaErrors))

	for i, v := range violations {
		if i == maxSchemaErrors {
			break
		}

		msgs = append(msgs, v.Field()+": "+v.Description())
	}

	return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(msgs, "; "))
}
