package extraction

import (
	"github.com/xeipuuv/gojsonschema"
)

// leadSchemaJSON is the JSON Schema each raw lead element must satisfy to be
// accepted without salvage.
const leadSchemaJSON = `{
  "type": "object",
  "required": ["company", "contacts", "source", "confidence"],
  "properties": {
    "company": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "industry": {"type": "string"},
        "size": {"type": "string"},
        "website": {"type": "string"},
        "location": {"type": "string"},
        "description": {"type": "string"}
      }
    },
    "contacts": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "email": {"type": "string", "format": "email"},
          "phone": {"type": "string"},
          "linkedin": {"type": "string", "format": "uri"}
        }
      }
    },
    "source": {"type": "string", "minLength": 1},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "metadata": {
      "type": "object",
      "properties": {
        "documentType": {"type": "string"},
        "documentUrl": {"type": "string"},
        "keywords": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var leadSchema = gojsonschema.NewStringLoader(leadSchemaJSON)

// validateLeadElement checks one decoded lead element against the schema.
func validateLeadElement(element any) (bool, error) {
	result, err := gojsonschema.Validate(leadSchema, gojsonschema.NewGoLoader(element))
	if err != nil {
		return false, err
	}
	return result.Valid(), nil
}
