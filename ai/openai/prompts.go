package openai

import (
	"fmt"
	"strings"

	"github.com/gabrieldave/ingesta/core"
)

const metadataResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "title": {
      "type": "string"
    },
    "author": {
      "type": "string"
    },
    "category": {
      "type": "string"
    }
  },
  "required": ["title", "author", "category"],
  "additionalProperties": false
}`

const metadataPromptTemplate = `You are an expert in bibliographic classification. Analyze an excerpt from a
finance text and return STRICTLY a JSON object. Do not include any text,
explanation, or comment outside the JSON object. Start your response directly
with the opening brace { and end with the closing brace }. Your output must
exactly follow this schema:

%s

Rules:
- "title" is the title of the work as stated in the excerpt. If the excerpt never names it, infer a short descriptive title from its content.
- "author" is the author of the work. If the excerpt gives no hint, use "Desconocido".
- "category" must be exactly one of the following values: %s. If none applies, use "General/Inversión".
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "REMINISCENCES OF A STOCK OPERATOR by Edwin Lefèvre. Chapter I. I went to work when I was just out of grammar school..."
Output:
{
  "title": "Reminiscences of a Stock Operator",
  "author": "Edwin Lefèvre",
  "category": "Biografía/Historias de Traders"
}`

// buildSystemPrompt creates the system prompt with the category vocabulary embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(metadataPromptTemplate,
		metadataResponseSchema,
		strings.Join(core.Categories, ", "))
}

// buildUserPrompt wraps the excerpt for the classification request.
func buildUserPrompt(excerpt string) string {
	return fmt.Sprintf("Classify this document and extract its title and author. Text:\n```%s```", excerpt)
}
