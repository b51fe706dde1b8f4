// Package validation checks scoring service payloads against their JSON schemas.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Endpoint names used as schema keys.
const (
	EndpointCalculateLoan = "calculate_loan"
	EndpointTranslate     = "translate"
	EndpointChatbot       = "chatbot"
	EndpointHealth        = "health"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var responseSchemas = map[string]string{
	EndpointCalculateLoan: `{
		"type": "object",
		"required": ["success"],
		"properties": {
			"success": {"type": "boolean"},
			"error": {"type": ["string", "null"]},
			"result": {
				"type": ["object", "null"],
				"required": ["status", "status_class", "eligibility_score"],
				"properties": {
					"status": {"type": "string"},
					"status_class": {"type": "string"},
					"eligibility_score": {"type": "number"},
					"estimated_emi": {"type": ["number", "string"]},
					"emi_ratio": {"type": "number"},
					"reasons": {"type": "array", "items": {"type": "string"}},
					"criteria_scores": {"type": "object", "additionalProperties": {"type": "string"}},
					"recommendation": {"type": "string"},
					"loan_details": {
						"type": "object",
						"properties": {
							"amount": {"type": ["number", "string"]},
							"tenure": {"type": "integer"},
							"estimated_interest_rate": {"type": "number"},
							"processing_fee": {"type": ["number", "string"]},
							"total_payable": {"type": ["number", "string"]}
						}
					},
					"ml_prediction": {
						"type": ["object", "null"],
						"required": ["prediction"],
						"properties": {
							"prediction": {"type": "string"},
							"confidence": {"type": "number", "minimum": 0, "maximum": 1}
						}
					}
				}
			}
		}
	}`,
	EndpointTranslate: `{
		"type": "object",
		"required": ["success"],
		"properties": {
			"success": {"type": "boolean"},
			"translated_text": {"type": ["string", "null"]},
			"error": {"type": ["string", "null"]}
		}
	}`,
	EndpointChatbot: `{
		"type": "object",
		"required": ["success"],
		"properties": {
			"success": {"type": "boolean"},
			"response": {"type": ["string", "null"]},
			"is_loan_related": {"type": ["boolean", "null"]},
			"error": {"type": ["string", "null"]}
		}
	}`,
	EndpointHealth: `{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"type": "string"},
			"timestamp": {"type": ["string", "null"]},
			"version": {"type": ["string", "null"]},
			"frontend_built": {"type": ["boolean", "null"]}
		}
	}`,
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

func schemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema, len(responseSchemas))
		for name, src := range responseSchemas {
			s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
			if err != nil {
				compileErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// Endpoints lists the endpoints that have a response schema.
func Endpoints() []string {
	out := make([]string, 0, len(responseSchemas))
	for name := range responseSchemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ValidateResponse checks a raw response body against the endpoint's schema.
// A body that is not JSON at all is reported as an error.
func ValidateResponse(endpoint string, body []byte) (*ValidationResult, error) {
	all, err := schemas()
	if err != nil {
		return nil, err
	}
	schema, ok := all[endpoint]
	if !ok {
		return nil, fmt.Errorf("no response schema for endpoint %q", endpoint)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	vr := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		vr.Errors = append(vr.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return vr, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
