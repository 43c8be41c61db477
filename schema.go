package argz

// NodeType is a discriminator for the entries of a pipeline Schema.
type NodeType string

// Node types for every element a pipeline can hold.
const (
	// Containers (have children).
	NodeTypePipeline NodeType = "pipeline"
	NodeTypeValidate NodeType = "validate"
	NodeTypeParse    NodeType = "parse"
	NodeTypeOr       NodeType = "or"
	NodeTypeAnd      NodeType = "and"
	NodeTypeNot      NodeType = "not"
	NodeTypeXor      NodeType = "xor"

	// Leaves.
	NodeTypeAny       NodeType = "any"
	NodeTypeType      NodeType = "type"
	NodeTypeValues    NodeType = "values"
	NodeTypeRange     NodeType = "range"
	NodeTypeExpr      NodeType = "expr"
	NodeTypeFunc      NodeType = "func"
	NodeTypeRegex     NodeType = "regex"
	NodeTypePredicate NodeType = "predicate"
	NodeTypeParser    NodeType = "parser"
)

// Node is one element of a pipeline Schema: the pipeline itself, a stage,
// or a predicate or parser bound to an argument position.
//
// Stage nodes carry their level: 1 for the last appended stage, which runs
// first on input, up to the number of stages for the first appended one. The
// level is omitted when the pipeline holds a single stage. Argument nodes carry
// their position. Output predicates and parsers are listed under Output.
type Node struct {
	Type     NodeType       `json:"type"`
	Name     string         `json:"name"`
	Level    int            `json:"level,omitempty"`
	Position *int           `json:"position,omitempty"`
	Children []Node         `json:"children,omitempty"`
	Output   []Node         `json:"output,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Schema is a JSON-serializable description of a pipeline, built without
// running it. Use it for debugging and tooling:
//
//	schema := pipeline.Schema()
//	data, _ := json.MarshalIndent(schema, "", "  ")
//	fmt.Println(string(data))
type Schema struct {
	Root Node `json:"root"`
}

// NewSchema wraps a root node.
func NewSchema(root Node) Schema {
	return Schema{Root: root}
}

// Schema describes the stages in insertion order.
func (p *Pipeline) Schema() Schema {
	stages := p.Stages()
	root := Node{
		Type:     NodeTypePipeline,
		Name:     p.name,
		Metadata: map[string]any{"stages": len(stages)},
	}
	for i, stage := range stages {
		node := StageNode(stage)
		if len(stages) > 1 {
			node.Level = len(stages) - i
		}
		root.Children = append(root.Children, node)
	}
	return NewSchema(root)
}

// StageNode describes one stage and its per-position entries.
func StageNode(stage Stage) Node {
	node := Node{
		Type:     NodeType(stage.Kind()),
		Name:     stage.Name(),
		Metadata: map[string]any{"arity": stage.Arity()},
	}
	switch s := stage.(type) {
	case *ValidateStage:
		node.Children = positional(s.inputs, PredicateNode)
		node.Output = positional(s.outputs, PredicateNode)
	case *ParseStage:
		node.Children = positional(s.inputs, ParserNode)
		node.Output = positional(s.outputs, ParserNode)
	}
	return node
}

func positional[T any](items []T, describe func(T) Node) []Node {
	if len(items) == 0 {
		return nil
	}
	nodes := make([]Node, len(items))
	for i, item := range items {
		pos := i
		nodes[i] = describe(item)
		nodes[i].Position = &pos
	}
	return nodes
}

// PredicateNode describes a predicate, expanding combinators into children.
func PredicateNode(p Predicate) Node {
	node := Node{Name: p.String()}
	switch v := p.(type) {
	case EmptyPredicate:
		node.Type = NodeTypeAny
	case *TypeCheck:
		node.Type = NodeTypeType
		node.Metadata = map[string]any{"types": v.names(", ")}
	case *ValueSet:
		node.Type = NodeTypeValues
		node.Metadata = map[string]any{"count": len(v.values)}
	case *NumericRange:
		node.Type = NodeTypeRange
		start, stop, step := v.Bounds()
		node.Metadata = map[string]any{"start": start, "stop": stop, "step": step}
	case *ExprPredicate:
		node.Type = NodeTypeExpr
	case *UserPredicate:
		node.Type = NodeTypeFunc
	case *RegexPredicate:
		node.Type = NodeTypeRegex
		node.Metadata = map[string]any{"pattern": v.pattern, "full": v.full}
	case *Disjunction:
		node.Type = NodeTypeOr
		node.Children = members(v.Members())
	case *Conjunction:
		node.Type = NodeTypeAnd
		node.Children = members(v.Members())
	case *Negation:
		node.Type = NodeTypeNot
		node.Children = []Node{PredicateNode(v.Inner())}
	case *Exclusive:
		a, b := v.Members()
		node.Type = NodeTypeXor
		node.Children = []Node{PredicateNode(a), PredicateNode(b)}
	default:
		node.Type = NodeTypePredicate
	}
	return node
}

func members(preds []Predicate) []Node {
	nodes := make([]Node, len(preds))
	for i, p := range preds {
		nodes[i] = PredicateNode(p)
	}
	return nodes
}

// ParserNode describes a parser.
func ParserNode(p Parser) Node {
	node := Node{Type: NodeTypeParser, Name: p.Name()}
	if p.IsPassthrough() {
		node.Metadata = map[string]any{"passthrough": true}
	}
	return node
}

// Walk traverses the schema tree depth-first, pre-order, visiting input
// children before output entries.
func (s Schema) Walk(fn func(Node)) {
	walkNode(s.Root, fn)
}

func walkNode(node Node, fn func(Node)) {
	fn(node)
	for _, child := range node.Children {
		walkNode(child, fn)
	}
	for _, out := range node.Output {
		walkNode(out, fn)
	}
}

// Find returns the first node matching the predicate, or nil if not found.
func (s Schema) Find(match func(Node) bool) *Node {
	var result *Node
	s.Walk(func(node Node) {
		if result == nil && match(node) {
			result = &node
		}
	})
	return result
}

// FindByName returns the first node with the given name, or nil.
func (s Schema) FindByName(name string) *Node {
	return s.Find(func(n Node) bool {
		return n.Name == name
	})
}

// FindByType returns all nodes of the given type.
func (s Schema) FindByType(t NodeType) []Node {
	var results []Node
	s.Walk(func(node Node) {
		if node.Type == t {
			results = append(results, node)
		}
	})
	return results
}

// Count returns the total number of nodes in the schema.
func (s Schema) Count() int {
	count := 0
	s.Walk(func(Node) {
		count++
	})
	return count
}
