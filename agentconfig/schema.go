package agentconfig

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/agentconfig.json
var agentConfigSchema string

var defaultValidator = mustNewSchemaValidator(agentConfigSchema)

// SchemaValidator validates agent configuration documents against a JSON schema.
type SchemaValidator interface {
	Validate(doc json.RawMessage) error
}

type schemaValidator struct {
	schema *gojsonschema.Schema
}

func mustNewSchemaValidator(schema string) SchemaValidator {
	loaded, err := gojsonschema.NewSchemaLoader().Compile(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("Failed to compile the agent config schema: %v", err))
	}
	return &schemaValidator{schema: loaded}
}

func (validator *schemaValidator) Validate(doc json.RawMessage) error {
	result, err := validator.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return err
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
