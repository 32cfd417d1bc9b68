// Package schema validates field mapping documents against the extraction
// document schema. The schema is reflected from the Go wire types so it can
// never drift from what the server actually stores.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/phototype/evidence-mcp/pkg/types"
)

// printer renders validation failures as English messages.
var printer = message.NewPrinter(language.English)

// Validator checks JSON documents against the extraction document schema.
type Validator struct {
	schema    *jsonschema.Schema
	schemaDoc []byte
}

// NewValidator reflects the schema from types.ExtractionDocument and
// compiles it.
func NewValidator() (*Validator, error) {
	reflector := &invopop.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	reflected := reflector.Reflect(&types.ExtractionDocument{})

	schemaJSON, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("encoding reflected schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("parsing reflected schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("extraction.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return &Validator{schema: compiled, schemaDoc: schemaJSON}, nil
}

// SchemaJSON returns the reflected schema document, served as an MCP
// resource so clients can see the storage shape.
func (v *Validator) SchemaJSON() []byte { return v.schemaDoc }

// Result reports the outcome of one validation.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate checks raw JSON against the extraction document schema. Schema
// violations are reported in the result, not as an error; the error return
// is for undecodable input.
func (v *Validator) Validate(data []byte) (*Result, error) {
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	err = v.schema.Validate(inst)
	if err == nil {
		return &Result{Valid: true}, nil
	}

	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return &Result{Valid: false, Errors: flattenErrors(validationErr)}, nil
	}
	return nil, err
}

// flattenErrors collects leaf validation failures as readable strings.
func flattenErrors(err *jsonschema.ValidationError) []string {
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e.ErrorKind != nil && len(e.Causes) == 0 {
			loc := "/" + strings.Join(e.InstanceLocation, "/")
			out = append(out, fmt.Sprintf("%s: %s", loc, e.ErrorKind.LocalizedString(printer)))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(err)
	return out
}
