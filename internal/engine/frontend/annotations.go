package frontend

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"snapdiff/internal/engine/typesys"
)

// builtinClasses maps spellable builtin type names to fully qualified class
// names. Anything outside this map stays an unresolved reference, which the
// snapshot engine compares by spelled shape.
var builtinClasses = map[string]string{
	"int":       "builtins.int",
	"str":       "builtins.str",
	"float":     "builtins.float",
	"bool":      "builtins.bool",
	"bytes":     "builtins.bytes",
	"complex":   "builtins.complex",
	"object":    "builtins.object",
	"list":      "builtins.list",
	"dict":      "builtins.dict",
	"set":       "builtins.set",
	"frozenset": "builtins.frozenset",
	"tuple":     "builtins.tuple",
	"type":      "builtins.type",
	"List":      "builtins.list",
	"Dict":      "builtins.dict",
	"Set":       "builtins.set",
	"FrozenSet": "builtins.frozenset",
}

// parseTypeNode converts a type annotation node into a structural type.
func (c *extractionContext) parseTypeNode(node *sitter.Node) typesys.Type {
	if node == nil {
		return &typesys.Any{}
	}
	switch node.Kind() {
	case "type":
		// Wrapper node around the actual annotation expression.
		if node.ChildCount() > 0 {
			return c.parseTypeNode(node.Child(0))
		}
		return &typesys.Any{}
	case "identifier":
		return c.parseNamed(c.text(node), nil)
	case "attribute":
		return c.parseNamed(c.text(node), nil)
	case "none":
		return &typesys.None{}
	case "string":
		// Forward reference: the quoted text is an unresolved name.
		return &typesys.Unbound{Name: trimQuotes(c.text(node))}
	case "binary_operator":
		return c.parsePipeUnion(node)
	case "subscript":
		return c.parseSubscript(node)
	case "ellipsis":
		return &typesys.Any{}
	default:
		return &typesys.Unbound{Name: c.text(node)}
	}
}

func trimQuotes(s string) string {
	return strings.Trim(s, "\"'")
}

// parseNamed resolves a spelled name plus optional type arguments.
func (c *extractionContext) parseNamed(name string, args []typesys.Type) typesys.Type {
	switch name {
	case "Any", "typing.Any":
		return &typesys.Any{}
	case "None":
		return &typesys.None{}
	case "NoReturn", "typing.NoReturn", "Never", "typing.Never":
		return &typesys.Uninhabited{}
	}
	if builtin, ok := builtinClasses[name]; ok {
		return &typesys.Instance{ClassName: builtin, Args: args}
	}
	return &typesys.Unbound{Name: name, Args: args}
}

// parsePipeUnion flattens `X | Y | Z` into one union.
func (c *extractionContext) parsePipeUnion(node *sitter.Node) typesys.Type {
	op := node.ChildByFieldName("operator")
	if op == nil || c.text(op) != "|" {
		return &typesys.Unbound{Name: c.text(node)}
	}
	var items []typesys.Type
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if n.Kind() == "binary_operator" {
			inner := n.ChildByFieldName("operator")
			if inner != nil && c.text(inner) == "|" {
				collect(n.ChildByFieldName("left"))
				collect(n.ChildByFieldName("right"))
				return
			}
		}
		items = append(items, c.parseTypeNode(n))
	}
	collect(node)
	return &typesys.Union{Items: items}
}

// parseSubscript handles generic forms: Union[...], Optional[...],
// Tuple[...], Callable[[...], R], and parameterized named types.
func (c *extractionContext) parseSubscript(node *sitter.Node) typesys.Type {
	base := node.ChildByFieldName("value")
	if base == nil {
		return &typesys.Unbound{Name: c.text(node)}
	}
	baseName := c.text(base)
	short := baseName
	if idx := strings.LastIndexByte(short, '.'); idx >= 0 {
		short = short[idx+1:]
	}

	args := c.subscriptArgs(node)
	switch short {
	case "Union":
		return &typesys.Union{Items: args}
	case "Optional":
		if len(args) == 1 {
			return &typesys.Union{Items: []typesys.Type{args[0], &typesys.None{}}}
		}
		return &typesys.Union{Items: append(args, &typesys.None{})}
	case "Tuple", "tuple":
		return &typesys.Tuple{Items: args}
	case "Callable":
		return c.parseCallableSubscript(node, args)
	case "Type", "type":
		if len(args) == 1 {
			return &typesys.TypeType{Item: args[0]}
		}
	}
	return c.parseNamed(baseName, args)
}

func (c *extractionContext) subscriptArgs(node *sitter.Node) []typesys.Type {
	var args []typesys.Type
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "[" || child.Kind() == "]" || child.Kind() == "," {
			continue
		}
		if node.ChildByFieldName("value") != nil && child.Id() == node.ChildByFieldName("value").Id() {
			continue
		}
		args = append(args, c.parseTypeNode(child))
	}
	return args
}

// parseCallableSubscript handles Callable[[A, B], R] and Callable[..., R].
func (c *extractionContext) parseCallableSubscript(node *sitter.Node, parsed []typesys.Type) typesys.Type {
	callable := &typesys.Callable{Ret: &typesys.Any{}}

	var paramsNode, retNode *sitter.Node
	value := node.ChildByFieldName("value")
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		kind := child.Kind()
		if kind == "[" || kind == "]" || kind == "," {
			continue
		}
		if value != nil && child.Id() == value.Id() {
			continue
		}
		if paramsNode == nil {
			paramsNode = child
			continue
		}
		retNode = child
	}

	if retNode != nil {
		callable.Ret = c.parseTypeNode(retNode)
	}
	if paramsNode == nil {
		callable.IsEllipsisArgs = true
		return callable
	}
	switch paramsNode.Kind() {
	case "ellipsis":
		callable.IsEllipsisArgs = true
	case "list":
		for i := uint(0); i < paramsNode.ChildCount(); i++ {
			child := paramsNode.Child(i)
			kind := child.Kind()
			if kind == "[" || kind == "]" || kind == "," {
				continue
			}
			callable.ArgTypes = append(callable.ArgTypes, c.parseTypeNode(child))
			callable.ArgNames = append(callable.ArgNames, "")
			callable.ArgKinds = append(callable.ArgKinds, typesys.ArgPos)
		}
	default:
		callable.IsEllipsisArgs = true
	}
	return callable
}
