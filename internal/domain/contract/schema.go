package contract

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abdidvp/skillguard/internal/domain"
)

// Schema names accepted by validate-output-schema.
const (
	SchemaEnvelope    = "envelope"
	SchemaSkillOutput = "skill-output"
)

const schemaBaseID = "https://github.com/abdidvp/skillguard/schemas/"

// SkillOutput is the structured answer a skill hands back to the agent.
type SkillOutput struct {
	Summary     string      `json:"summary" jsonschema:"minLength=1,pattern=\\S"`
	Artifacts   []any       `json:"artifacts"`
	NextActions []any       `json:"next_actions"`
	MachineJSON MachineJSON `json:"machine_json"`
}

// MachineJSON is the machine-readable part of a SkillOutput.
type MachineJSON struct {
	Decisions         any                `json:"decisions"`
	Risks             any                `json:"risks"`
	RequiredInputs    any                `json:"required_inputs"`
	ValidationResults []ValidationRecord `json:"validation_results"`
}

// ValidationRecord reports one check the skill ran.
type ValidationRecord struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details any    `json:"details,omitempty"`
}

type schemaDef struct {
	title string
	model any
}

var schemaDefs = map[string]schemaDef{
	SchemaEnvelope:    {title: "skillguard result envelope", model: &domain.Envelope{}},
	SchemaSkillOutput: {title: "skill output", model: &SkillOutput{}},
}

// SchemaNames lists the schemas validate-output-schema knows.
func SchemaNames() []string {
	names := make([]string, 0, len(schemaDefs))
	for n := range schemaDefs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReflectSchema builds the JSON Schema for name from its Go type.
func ReflectSchema(name string) (*jsonschema.Schema, error) {
	def, ok := schemaDefs[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
		Mapper:                    mapDomainTypes,
	}
	s := r.Reflect(def.model)
	s.ID = jsonschema.ID(schemaBaseID + name + ".json")
	s.Title = def.title
	return s, nil
}

// SchemaJSON returns the indented JSON form of the named schema.
func SchemaJSON(name string) ([]byte, error) {
	s, err := ReflectSchema(name)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

var entryType = reflect.TypeOf(domain.Entry{})

// mapDomainTypes pins envelope entries to the taxonomy: code is an enum of
// registered codes and path/remediation are string or null.
func mapDomainTypes(t reflect.Type) *jsonschema.Schema {
	if t != entryType {
		return nil
	}
	codes := domain.AllCodes()
	enum := make([]any, len(codes))
	for i, c := range codes {
		enum[i] = c
	}
	nullable := func() *jsonschema.Schema {
		return &jsonschema.Schema{OneOf: []*jsonschema.Schema{{Type: "string"}, {Type: "null"}}}
	}
	props := jsonschema.NewProperties()
	props.Set("code", &jsonschema.Schema{Type: "string", Enum: enum})
	props.Set("message", &jsonschema.Schema{Type: "string"})
	props.Set("path", nullable())
	props.Set("remediation", nullable())
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"code", "message", "path", "remediation"},
	}
}

// compiledSchema pairs a compiled validator with the top-level property
// names its schema declares.
type compiledSchema struct {
	name     string
	schema   *sjsonschema.Schema
	declared map[string]bool
}

var (
	compiledMu    sync.Mutex
	compiledCache = map[string]*compiledSchema{}
)

// loadSchema reflects and compiles name once per process.
func loadSchema(name string) (*compiledSchema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if c, ok := compiledCache[name]; ok {
		return c, nil
	}

	s, err := ReflectSchema(name)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", name, err)
	}

	url := string(s.ID)
	c := sjsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	declared := map[string]bool{}
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			declared[pair.Key] = true
		}
	}
	compiled := &compiledSchema{name: name, schema: sch, declared: declared}
	compiledCache[name] = compiled
	return compiled, nil
}
