package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// Reference labels map a target name to its expected text. Two value shapes
// exist in the wild: a plain string, or a list of text boxes whose "text"
// fields concatenate to the expected text.
const labelsSchemaSource = `{
	"type": "object",
	"additionalProperties": {
		"anyOf": [
			{"type": "string"},
			{"type": "array", "items": {"type": "object"}}
		]
	}
}`

var labelsSchema = jsonschema.MustCompileString("labels.json", labelsSchemaSource)

// LoadLabels reads a reference-text mapping from a labels file. The file is
// schema-checked before parsing so a malformed file fails loudly instead of
// silently producing empty references.
func LoadLabels(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return ParseLabels(raw)
}

// ParseLabels validates and parses raw labels JSON.
func ParseLabels(raw []byte) (map[string]string, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("labels file is not valid JSON: %w", err)
	}
	if err := labelsSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("labels file has unexpected structure: %w", err)
	}

	labels := map[string]string{}
	gjson.ParseBytes(raw).ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.IsArray():
			var b strings.Builder
			for _, box := range value.Array() {
				b.WriteString(box.Get("text").String())
			}
			labels[key.String()] = b.String()
		case value.Type == gjson.String:
			labels[key.String()] = value.String()
		}
		return true
	})
	return labels, nil
}
