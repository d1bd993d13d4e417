package frontend

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"snapdiff/internal/engine/typesys"
)

// extractExpression handles module- and class-level assignment statements:
// annotated variables, bare assignments, `TypeAlias` declarations, and
// `TypeVar` / `NewType` definitions.
func (c *extractionContext) extractExpression(node *sitter.Node, prefix string, scope typesys.Scope) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "assignment" {
			c.extractAssignment(child, prefix, scope)
		}
	}
}

func (c *extractionContext) extractAssignment(node *sitter.Node, prefix string, scope typesys.Scope) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return
	}
	name := c.text(left)
	fullName := prefix + "." + name

	right := node.ChildByFieldName("right")
	annotation := node.ChildByFieldName("type")

	// `X: TypeAlias = ...` declares a type alias whose target is the
	// assigned type expression.
	if annotation != nil && isTypeAliasAnnotation(c.text(annotation)) {
		var target typesys.Type
		if right != nil {
			target = c.parseTypeNode(right)
		}
		scope[name] = &typesys.SymbolEntry{
			Kind:     typesys.KindTypeAliasDef,
			Public:   isPublicName(name),
			FullName: fullName,
			Def:      &typesys.TypeAliasDef{Target: target},
		}
		return
	}

	if right != nil && right.Kind() == "call" {
		callee := c.text(right.ChildByFieldName("function"))
		switch {
		case callee == "TypeVar" || strings.HasSuffix(callee, ".TypeVar"):
			c.extractTypeVar(right, name, fullName, scope)
			return
		case callee == "NewType" || strings.HasSuffix(callee, ".NewType"):
			c.extractNewType(right, name, fullName, scope)
			return
		}
	}

	var declared typesys.Type
	if annotation != nil {
		declared = c.parseTypeNode(annotation)
	}
	scope[name] = &typesys.SymbolEntry{
		Kind:     typesys.KindDef,
		Public:   isPublicName(name),
		FullName: fullName,
		Def:      &typesys.VarDef{Declared: declared},
	}
}

func isTypeAliasAnnotation(text string) bool {
	text = strings.TrimSpace(text)
	return text == "TypeAlias" || strings.HasSuffix(text, ".TypeAlias")
}

// extractTypeVar handles `T = TypeVar('T', int, str, bound=Base)`. Each
// definition gets a fresh numeric id so that equally named variables from
// different definitions stay distinct.
func (c *extractionContext) extractTypeVar(call *sitter.Node, name, fullName string, scope typesys.Scope) {
	c.tvarSeq++
	tvar := &typesys.TypeVar{
		Name:       name,
		FullName:   fullName,
		ID:         c.tvarSeq,
		UpperBound: &typesys.Instance{ClassName: "builtins.object"},
	}

	args := call.ChildByFieldName("arguments")
	if args != nil {
		positional := 0
		for i := uint(0); i < args.ChildCount(); i++ {
			arg := args.Child(i)
			switch arg.Kind() {
			case "keyword_argument":
				key := c.text(arg.ChildByFieldName("name"))
				value := arg.ChildByFieldName("value")
				switch key {
				case "bound":
					tvar.UpperBound = c.parseTypeNode(value)
				case "covariant":
					if c.text(value) == "True" {
						tvar.Variance = typesys.Covariant
					}
				case "contravariant":
					if c.text(value) == "True" {
						tvar.Variance = typesys.Contravariant
					}
				}
			case "string":
				// First positional argument is the display name.
				positional++
			default:
				if arg.Kind() == "," || arg.Kind() == "(" || arg.Kind() == ")" {
					continue
				}
				positional++
				tvar.Values = append(tvar.Values, c.parseTypeNode(arg))
			}
		}
	}

	scope[name] = &typesys.SymbolEntry{
		Kind:     typesys.KindTypeVarDef,
		Public:   isPublicName(name),
		FullName: fullName,
		Def:      &typesys.TypeVarDef{TVar: tvar},
	}
}

// extractNewType handles `X = NewType('X', Base)`: a class-like definition
// deriving from its base type.
func (c *extractionContext) extractNewType(call *sitter.Node, name, fullName string, scope typesys.Scope) {
	base := "builtins.object"
	args := call.ChildByFieldName("arguments")
	if args != nil {
		sawName := false
		for i := uint(0); i < args.ChildCount(); i++ {
			arg := args.Child(i)
			switch arg.Kind() {
			case "string":
				sawName = true
			case "identifier", "attribute", "subscript":
				if sawName {
					base = c.qualifyBase(c.text(arg))
				}
			}
		}
	}
	scope[name] = &typesys.SymbolEntry{
		Kind:     typesys.KindDef,
		Public:   isPublicName(name),
		FullName: fullName,
		Def: &typesys.ClassDef{
			FullName: fullName,
			NewType:  true,
			MRO:      []string{fullName, base, "builtins.object"},
			Names:    make(typesys.Scope),
		},
	}
}
