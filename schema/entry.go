package schema

import (
	"fmt"

	"github.com/zoobzio/argz"
	"gopkg.in/yaml.v3"
)

const nullTag = "!!null"

var comparisons = map[string]func(argz.Expr, any) argz.Expr{
	">":  argz.Expr.Gt,
	">=": argz.Expr.Ge,
	"<":  argz.Expr.Lt,
	"<=": argz.Expr.Le,
	"==": argz.Expr.Eq,
	"!=": argz.Expr.Ne,
}

var binaryOps = map[string]func(argz.Expr, any) argz.Expr{
	"add":      argz.Expr.Add,
	"sub":      argz.Expr.Sub,
	"mul":      argz.Expr.Mul,
	"div":      argz.Expr.Div,
	"floordiv": argz.Expr.FloorDiv,
	"mod":      argz.Expr.Mod,
	"pow":      argz.Expr.Pow,
	"and":      argz.Expr.And,
	"or":       argz.Expr.Or,
	"xor":      argz.Expr.Xor,
	"shl":      argz.Expr.Shl,
	"shr":      argz.Expr.Shr,
	"index":    argz.Expr.Index,
}

var unaryOps = map[string]func(argz.Expr) argz.Expr{
	"neg":    argz.Expr.Neg,
	"pos":    argz.Expr.Pos,
	"abs":    argz.Expr.Abs,
	"invert": argz.Expr.Invert,
}

// compiler turns YAML entries into specs and parsers.
type compiler struct {
	reg *Registry
}

func (c *compiler) spec(node *yaml.Node, path string) (argz.Spec, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == nullTag {
			return argz.Any(), nil
		}
		v, err := scalar(node, path)
		if err != nil {
			return argz.Spec{}, err
		}
		return argz.Literal(v), nil
	case yaml.SequenceNode:
		items, err := c.specs(node.Content, path)
		if err != nil {
			return argz.Spec{}, err
		}
		if len(items) == 0 {
			return argz.Spec{}, errorf(node.Line, path, ErrInvalidEntry, "empty list")
		}
		return argz.List(items...), nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return argz.Spec{}, errorf(node.Line, path, ErrInvalidEntry, "validator must have exactly one key")
		}
		return c.validator(node.Content[0].Value, node.Content[1], path)
	case yaml.AliasNode:
		return c.spec(node.Alias, path)
	}
	return argz.Spec{}, errorf(node.Line, path, ErrInvalidEntry, "unsupported node")
}

func (c *compiler) specs(nodes []*yaml.Node, path string) ([]argz.Spec, error) {
	out := make([]argz.Spec, len(nodes))
	for i, n := range nodes {
		s, err := c.spec(n, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (c *compiler) validator(key string, value *yaml.Node, path string) (argz.Spec, error) {
	path = path + "." + key
	switch key {
	case "any":
		return argz.Any(), nil
	case "type":
		return c.typeSpec(value, path)
	case "value":
		v, err := scalar(value, path)
		if err != nil {
			return argz.Spec{}, err
		}
		return argz.Literal(v), nil
	case "oneof":
		values, err := scalars(value, path)
		if err != nil {
			return argz.Spec{}, err
		}
		return argz.OneOf(values...), nil
	case "keys":
		if value.Kind != yaml.MappingNode {
			return argz.Spec{}, errorf(value.Line, path, ErrInvalidEntry, "keys expects a mapping")
		}
		var keys []any
		for i := 0; i < len(value.Content); i += 2 {
			k, err := scalar(value.Content[i], path)
			if err != nil {
				return argz.Spec{}, err
			}
			keys = append(keys, k)
		}
		return argz.OneOf(keys...), nil
	case "range":
		return rangeSpec(value, path)
	case "match", "fullmatch":
		var pattern string
		if err := value.Decode(&pattern); err != nil {
			return argz.Spec{}, errorf(value.Line, path, ErrInvalidEntry, "%v", err)
		}
		compile := argz.MatchRegex
		if key == "fullmatch" {
			compile = argz.FullMatchRegex
		}
		p, err := compile(pattern)
		if err != nil {
			return argz.Spec{}, &Error{Line: value.Line, Path: path, Err: err}
		}
		return argz.Pred(p), nil
	case "compare":
		return compareSpec(value, path)
	case "anyof", "allof":
		preds, err := c.predicates(value, path)
		if err != nil {
			return argz.Spec{}, err
		}
		if key == "anyof" {
			return argz.Pred(argz.Or(preds[0], preds[1:]...)), nil
		}
		return argz.Pred(argz.And(preds[0], preds[1:]...)), nil
	case "not":
		p, err := c.predicate(value, path)
		if err != nil {
			return argz.Spec{}, err
		}
		return argz.Pred(argz.Not(p)), nil
	case "xor":
		preds, err := c.predicates(value, path)
		if err != nil {
			return argz.Spec{}, err
		}
		if len(preds) != 2 {
			return argz.Spec{}, errorf(value.Line, path, ErrInvalidEntry, "xor expects two entries, got %d", len(preds))
		}
		return argz.Pred(argz.Xor(preds[0], preds[1])), nil
	case "func":
		p, ok := c.reg.Predicate(value.Value)
		if !ok {
			return argz.Spec{}, errorf(value.Line, path, ErrUnknownPredicate, "%q", value.Value)
		}
		return argz.Pred(p), nil
	}
	return argz.Spec{}, errorf(value.Line, path, ErrUnknownValidator, "%q", key)
}

func (c *compiler) typeSpec(value *yaml.Node, path string) (argz.Spec, error) {
	if value.Kind == yaml.SequenceNode {
		items := make([]argz.Spec, len(value.Content))
		for i, n := range value.Content {
			s, err := c.typeSpec(n, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return argz.Spec{}, err
			}
			items[i] = s
		}
		if len(items) == 0 {
			return argz.Spec{}, errorf(value.Line, path, ErrInvalidEntry, "empty type list")
		}
		return argz.List(items...), nil
	}
	s, ok := c.reg.Type(value.Value)
	if !ok {
		return argz.Spec{}, errorf(value.Line, path, ErrUnknownType, "%q", value.Value)
	}
	return s, nil
}

func (c *compiler) predicate(node *yaml.Node, path string) (argz.Predicate, error) {
	s, err := c.spec(node, path)
	if err != nil {
		return nil, err
	}
	p, err := argz.Resolve(s)
	if err != nil {
		return nil, &Error{Line: node.Line, Path: path, Err: err}
	}
	return p, nil
}

func (c *compiler) predicates(node *yaml.Node, path string) ([]argz.Predicate, error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return nil, errorf(node.Line, path, ErrInvalidEntry, "expected a non-empty list")
	}
	preds := make([]argz.Predicate, len(node.Content))
	for i, n := range node.Content {
		p, err := c.predicate(n, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

func (c *compiler) parser(node *yaml.Node, path string) (argz.Parser, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == nullTag {
			return argz.Passthrough(), nil
		}
		p, ok := c.reg.Parser(node.Value)
		if !ok {
			return argz.Parser{}, errorf(node.Line, path, ErrUnknownParser, "%q", node.Value)
		}
		return p, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 || node.Content[0].Value != "expr" {
			return argz.Parser{}, errorf(node.Line, path, ErrInvalidEntry, "parser mapping must be {expr: ...}")
		}
		e, err := chain(node.Content[1], path+".expr")
		if err != nil {
			return argz.Parser{}, err
		}
		return e.Parser(), nil
	case yaml.AliasNode:
		return c.parser(node.Alias, path)
	}
	return argz.Parser{}, errorf(node.Line, path, ErrInvalidEntry, "unsupported parser node")
}

func (c *compiler) parsers(nodes []*yaml.Node, path string) ([]argz.Parser, error) {
	out := make([]argz.Parser, len(nodes))
	for i, n := range nodes {
		p, err := c.parser(n, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// chain applies the operations of a mapping to I, in document order.
func chain(node *yaml.Node, path string) (argz.Expr, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) == 0 {
		return argz.Expr{}, errorf(node.Line, path, ErrInvalidEntry, "expected a mapping of operations")
	}
	e := argz.I
	for i := 0; i < len(node.Content); i += 2 {
		op, arg := node.Content[i].Value, node.Content[i+1]
		if fn, ok := unaryOps[op]; ok {
			e = fn(e)
			continue
		}
		fn, ok := binaryOps[op]
		if !ok {
			return argz.Expr{}, errorf(node.Content[i].Line, path, ErrInvalidEntry, "unknown operation %q", op)
		}
		v, err := scalar(arg, path+"."+op)
		if err != nil {
			return argz.Expr{}, err
		}
		e = fn(e, v)
	}
	return e, nil
}

func compareSpec(node *yaml.Node, path string) (argz.Spec, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) == 0 {
		return argz.Spec{}, errorf(node.Line, path, ErrInvalidEntry, "expected a mapping of comparisons")
	}
	var acc argz.Expr
	for i := 0; i < len(node.Content); i += 2 {
		op, arg := node.Content[i].Value, node.Content[i+1]
		fn, ok := comparisons[op]
		if !ok {
			return argz.Spec{}, errorf(node.Content[i].Line, path, ErrInvalidEntry, "unknown comparison %q", op)
		}
		v, err := scalar(arg, path)
		if err != nil {
			return argz.Spec{}, err
		}
		if i == 0 {
			acc = fn(argz.I, v)
			continue
		}
		acc = acc.And(fn(argz.I, v))
	}
	return argz.Expression(acc), nil
}

func rangeSpec(node *yaml.Node, path string) (argz.Spec, error) {
	var bounds []int64
	if err := node.Decode(&bounds); err != nil {
		return argz.Spec{}, errorf(node.Line, path, ErrInvalidEntry, "%v", err)
	}
	switch len(bounds) {
	case 2:
		return argz.Range(bounds[0], bounds[1]), nil
	case 3:
		return argz.RangeStep(bounds[0], bounds[1], bounds[2]), nil
	}
	return argz.Spec{}, errorf(node.Line, path, ErrInvalidEntry, "range expects [start, stop] or [start, stop, step]")
}

func scalar(node *yaml.Node, path string) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, errorf(node.Line, path, ErrInvalidEntry, "expected a scalar")
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, errorf(node.Line, path, ErrInvalidEntry, "%v", err)
	}
	return v, nil
}

func scalars(node *yaml.Node, path string) ([]any, error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return nil, errorf(node.Line, path, ErrInvalidEntry, "expected a non-empty list")
	}
	values := make([]any, len(node.Content))
	for i, n := range node.Content {
		v, err := scalar(n, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
