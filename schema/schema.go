// Package schema loads argz pipelines from YAML documents.
//
// A document names the pipeline, optionally declares its parameters, and
// lists stages in attachment order, so the last stage listed is the
// innermost one and runs first on input:
//
//	name: scale
//	params:
//	  - x
//	  - name: factor
//	    default: 2
//	stages:
//	  - validate: [{type: int}, {compare: {">=": 1}}]
//	  - parse: [int, int]
//
// Validator entries are mappings with one key (type, any, value, oneof, keys,
// range, match, fullmatch, compare, anyof, allof, not, xor, func). A bare
// scalar is a literal, ~ accepts anything and a sequence is a list. Parser
// entries are registry names, ~ for passthrough, or {expr: {mul: 2, add: 1}}.
package schema

import (
	"context"
	"fmt"
	"os"

	"github.com/zoobzio/argz"
	"gopkg.in/yaml.v3"
)

// Document is a parsed schema.
type Document struct {
	Name   string     `yaml:"name"`
	Params []ParamDef `yaml:"params"`
	Stages []StageDef `yaml:"stages"`
}

// ParamDef declares a parameter. A bare string is a required parameter.
type ParamDef struct {
	Default    any
	Name       string
	HasDefault bool
}

// UnmarshalYAML accepts either a name or a {name, default} mapping.
func (p *ParamDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if err := node.Decode(&p.Name); err != nil {
			return fmt.Errorf("cannot unmarshal YAML into ParamDef: %w", err)
		}
		return nil
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			switch key.Value {
			case "name":
				if err := value.Decode(&p.Name); err != nil {
					return fmt.Errorf("cannot unmarshal YAML into ParamDef: %w", err)
				}
			case "default":
				if err := value.Decode(&p.Default); err != nil {
					return fmt.Errorf("cannot unmarshal YAML into ParamDef: %w", err)
				}
				p.HasDefault = true
			default:
				return errorf(key.Line, "params", ErrInvalidEntry, "unknown field %q", key.Value)
			}
		}
		return nil
	}
	return errorf(node.Line, "params", ErrInvalidEntry, "parameter must be a name or a mapping")
}

// Param converts the definition.
func (p ParamDef) Param() argz.Param {
	if p.HasDefault {
		return argz.Optional(p.Name, p.Default)
	}
	return argz.Required(p.Name)
}

// StageDef declares one stage. Exactly one of Validate or Parse is set;
// Output optionally lists output validators or parsers of the same kind.
type StageDef struct {
	Name     string      `yaml:"name"`
	Validate []yaml.Node `yaml:"validate"`
	Parse    []yaml.Node `yaml:"parse"`
	Output   []yaml.Node `yaml:"output"`
	line     int
}

// UnmarshalYAML records the stage's line for error reporting.
func (s *StageDef) UnmarshalYAML(node *yaml.Node) error {
	type plain StageDef
	if err := node.Decode((*plain)(s)); err != nil {
		return fmt.Errorf("cannot unmarshal YAML into StageDef: %w", err)
	}
	s.line = node.Line
	return nil
}

// Kind reports which kind of stage the definition builds.
func (s StageDef) Kind() argz.StageKind {
	if s.Parse != nil {
		return argz.ParseKind
	}
	return argz.ValidateKind
}

// Load parses a YAML document.
func Load(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = "schema"
	}
	return &doc, nil
}

// LoadFile reads and parses a YAML document.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Build compiles the document into a pipeline. A nil registry uses the
// built-in names. Every stage must have the same arity.
func (d *Document) Build(reg *Registry) (*argz.Pipeline, error) {
	stages, err := d.stages(reg, 0)
	if err != nil {
		return nil, err
	}
	p := argz.NewPipeline(d.Name)
	for _, stage := range stages {
		if err := p.Append(stage); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	return p, nil
}

// Function compiles the document into a function binding around fn. Stages
// with fewer entries than parameters are padded to accept or pass through
// the remaining arguments.
func (d *Document) Function(reg *Registry, fn func(context.Context, []any) ([]any, error)) (*argz.Function, error) {
	params := make([]argz.Param, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Param()
	}
	stages, err := d.stages(reg, len(params))
	if err != nil {
		return nil, err
	}
	f, err := argz.NewFunction(d.Name, params, fn)
	if err != nil {
		return nil, err
	}
	for _, stage := range stages {
		if err := f.Append(stage); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

// stages compiles every stage. A positive arity pads entries up to it.
func (d *Document) stages(reg *Registry, arity int) ([]argz.Stage, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	c := &compiler{reg: reg}
	stages := make([]argz.Stage, len(d.Stages))
	for i, def := range d.Stages {
		path := fmt.Sprintf("stages[%d]", i)
		stage, err := c.stage(def, path, arity)
		if err != nil {
			return nil, err
		}
		if i > 0 && stage.Arity() != stages[0].Arity() {
			return nil, errorf(def.line, path, ErrInvalidStage, "expects %d values, earlier stages expect %d", stage.Arity(), stages[0].Arity())
		}
		stages[i] = stage
	}
	return stages, nil
}

func (c *compiler) stage(def StageDef, path string, arity int) (argz.Stage, error) {
	if (def.Validate == nil) == (def.Parse == nil) {
		return nil, errorf(def.line, path, ErrInvalidStage, "stage needs exactly one of validate or parse")
	}
	if def.Kind() == argz.ParseKind {
		return c.parseStage(def, path, arity)
	}
	return c.validateStage(def, path, arity)
}

func (c *compiler) validateStage(def StageDef, path string, arity int) (argz.Stage, error) {
	inputs, err := c.resolved(def.Validate, path+".validate", arity)
	if err != nil {
		return nil, err
	}
	stage := argz.NewValidateStage(inputs...)
	if def.Output != nil {
		outputs, err := c.resolved(def.Output, path+".output", 0)
		if err != nil {
			return nil, err
		}
		stage = stage.WithOutput(outputs...)
	}
	if def.Name != "" {
		stage = stage.WithName(def.Name)
	}
	return stage, nil
}

func (c *compiler) resolved(nodes []yaml.Node, path string, arity int) ([]argz.Predicate, error) {
	if arity > 0 && len(nodes) > arity {
		return nil, errorf(nodes[0].Line, path, ErrInvalidStage, "%d entries for %d parameters", len(nodes), arity)
	}
	preds := make([]argz.Predicate, 0, max(arity, len(nodes)))
	for i := range nodes {
		p, err := c.predicate(&nodes[i], fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	for len(preds) < arity {
		preds = append(preds, argz.Empty())
	}
	return preds, nil
}

func (c *compiler) parseStage(def StageDef, path string, arity int) (argz.Stage, error) {
	if arity > 0 && len(def.Parse) > arity {
		return nil, errorf(def.line, path+".parse", ErrInvalidStage, "%d entries for %d parameters", len(def.Parse), arity)
	}
	inputs, err := c.parsers(pointers(def.Parse), path+".parse")
	if err != nil {
		return nil, err
	}
	for len(inputs) < arity {
		inputs = append(inputs, argz.Passthrough())
	}
	stage := argz.NewParseStage(inputs...)
	if def.Output != nil {
		outputs, err := c.parsers(pointers(def.Output), path+".output")
		if err != nil {
			return nil, err
		}
		stage = stage.WithOutput(outputs...)
	}
	if def.Name != "" {
		stage = stage.WithName(def.Name)
	}
	return stage, nil
}

func pointers(nodes []yaml.Node) []*yaml.Node {
	out := make([]*yaml.Node, len(nodes))
	for i := range nodes {
		out[i] = &nodes[i]
	}
	return out
}
