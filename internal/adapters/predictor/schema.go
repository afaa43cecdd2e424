package predictor

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/csg33k/churn-advisor/internal/domain"
)

const responseSchemaJSON = `{
  "type": "object",
  "required": ["prediction", "probability", "suggested_discount"],
  "properties": {
    "prediction":         {"type": ["number", "boolean"]},
    "probability":        {"type": "number"},
    "suggested_discount": {"type": "number"}
  }
}`

var responseSchema = mustSchema(responseSchemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic("predictor: invalid response schema: " + err.Error())
	}
	return schema
}

// decodePrediction parses and validates a Prediction Response body.
func decodePrediction(raw []byte) (*domain.Prediction, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &domain.ParseError{Err: err}
	}

	result, err := responseSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, &domain.ParseError{Err: err}
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return nil, &domain.ParseError{Err: errors.New(strings.Join(msgs, "; "))}
	}

	// The schema guarantees an object with the three typed fields.
	fields := doc.(map[string]any)
	p := &domain.Prediction{
		Probability:       fields["probability"].(float64),
		SuggestedDiscount: fields["suggested_discount"].(float64),
	}
	switch v := fields["prediction"].(type) {
	case float64:
		p.Prediction = v
		p.Kind = domain.KindNumber
	case bool:
		if v {
			p.Prediction = 1
		}
		p.Kind = domain.KindBoolean
	}
	return p, nil
}
