package parse

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const questionArraySchemaURL = "schema://question-array.json"

// questionArraySchema accepts the current field names (text, stem,
// answers) and the legacy ones (content, options).
const questionArraySchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "allOf": [
      {"anyOf": [{"required": ["text"]}, {"required": ["stem"]}, {"required": ["content"]}]},
      {"anyOf": [{"required": ["answers"]}, {"required": ["options"]}]}
    ],
    "properties": {
      "text": {"type": "string"},
      "stem": {"type": "string"},
      "content": {"type": "string"},
      "code": {"type": ["string", "null"]},
      "answers": {"$ref": "#/$defs/answers"},
      "options": {"$ref": "#/$defs/answers"}
    }
  },
  "$defs": {
    "answers": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["text", "is_correct"],
        "properties": {
          "text": {"type": "string"},
          "is_correct": {"type": "boolean"}
        }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(questionArraySchema))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(questionArraySchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(questionArraySchemaURL)
})

// validateShape decodes payload generically and checks it against the
// question array schema.
func validateShape(payload string) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile question schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payload))
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}
