package quantummeadow

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// questionsSchemaJSON constrains the content service output. The same
// document is sent as the response format and used to validate the reply.
const questionsSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "properties": {
      "questionStory": {
        "type": "string",
        "description": "The animal-based story for the quiz question."
      },
      "options": {
        "type": "array",
        "description": "An array of 4 multiple-choice options.",
        "minItems": 4,
        "maxItems": 4,
        "items": {
          "type": "object",
          "properties": {
            "text": {
              "type": "string",
              "description": "The text of the option."
            },
            "isCorrect": {
              "type": "boolean",
              "description": "True if this is the correct answer."
            }
          },
          "required": ["text", "isCorrect"]
        }
      },
      "explanation": {
        "type": "string",
        "description": "Explanation of the correct answer and the related quantum concept."
      },
      "quantumConcept": {
        "type": "string",
        "description": "The name of the quantum concept."
      }
    },
    "required": ["questionStory", "options", "explanation", "quantumConcept"]
  }
}`

var questionsSchema = jsonschema.MustCompileString("quiz_questions.json", questionsSchemaJSON)

// validateQuestionsJSON checks a raw reply against the questions schema
func validateQuestionsJSON(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := questionsSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}
