package frontend

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"snapdiff/internal/engine/typesys"
)

// extractDecorated unwraps a decorated definition and forwards the decorator
// names to the inner handler.
func (c *extractionContext) extractDecorated(node *sitter.Node, prefix string, scope typesys.Scope) {
	var decorators []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "decorator" {
			continue
		}
		text := strings.TrimPrefix(c.text(child), "@")
		// Keep only the callee part of decorator calls.
		if idx := strings.IndexByte(text, '('); idx >= 0 {
			text = text[:idx]
		}
		decorators = append(decorators, strings.TrimSpace(text))
	}
	inner := node.ChildByFieldName("definition")
	if inner == nil {
		return
	}
	switch inner.Kind() {
	case "function_definition":
		c.extractFunction(inner, prefix, scope, decorators)
	case "class_definition":
		c.extractClass(inner, prefix, scope, decorators)
	}
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name || strings.HasSuffix(d, "."+name) {
			return true
		}
	}
	return false
}

// extractFunction builds a callable signature from declared annotations.
// Unannotated parameters and returns degrade to the dynamic type. Repeated
// definitions of one name under @overload accumulate into an overloaded
// signature in declaration order.
func (c *extractionContext) extractFunction(node *sitter.Node, prefix string, scope typesys.Scope, decorators []string) {
	name := c.childText(node, "identifier")
	if name == "" {
		return
	}
	fullName := prefix + "." + name

	callable := c.buildCallable(node)
	isProperty := hasDecorator(decorators, "property")
	isOverload := hasDecorator(decorators, "overload")

	if existing, ok := scope[name]; ok && isOverload {
		if def, ok := existing.Def.(*typesys.FuncDef); ok {
			def.Signature = appendOverload(def.Signature, callable)
			return
		}
	}

	var signature typesys.Type = callable
	if isOverload {
		signature = &typesys.Overloaded{Items: []*typesys.Callable{callable}}
	}
	scope[name] = &typesys.SymbolEntry{
		Kind:     typesys.KindDef,
		Public:   isPublicName(name),
		FullName: fullName,
		Def:      &typesys.FuncDef{IsProperty: isProperty, Signature: signature},
	}
}

func appendOverload(existing typesys.Type, alt *typesys.Callable) typesys.Type {
	switch existing := existing.(type) {
	case *typesys.Overloaded:
		existing.Items = append(existing.Items, alt)
		return existing
	case *typesys.Callable:
		return &typesys.Overloaded{Items: []*typesys.Callable{existing, alt}}
	default:
		return alt
	}
}

func (c *extractionContext) buildCallable(node *sitter.Node) *typesys.Callable {
	callable := &typesys.Callable{Ret: &typesys.Any{}}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		callable.Ret = c.parseTypeNode(ret)
	}

	params := node.ChildByFieldName("parameters")
	if params == nil {
		return callable
	}
	keywordOnly := false
	for i := uint(0); i < params.ChildCount(); i++ {
		param := params.Child(i)
		switch param.Kind() {
		case "identifier":
			c.appendArg(callable, c.text(param), &typesys.Any{}, positional(keywordOnly, false))
		case "typed_parameter":
			name := c.childText(param, "identifier")
			typ := c.parseFieldType(param, "type")
			c.appendArg(callable, name, typ, positional(keywordOnly, false))
		case "default_parameter":
			name := c.childText(param, "identifier")
			c.appendArg(callable, name, &typesys.Any{}, positional(keywordOnly, true))
		case "typed_default_parameter":
			name := c.childText(param, "identifier")
			typ := c.parseFieldType(param, "type")
			c.appendArg(callable, name, typ, positional(keywordOnly, true))
		case "list_splat_pattern":
			c.appendArg(callable, c.childText(param, "identifier"), &typesys.Any{}, typesys.ArgStar)
			keywordOnly = true
		case "dictionary_splat_pattern":
			c.appendArg(callable, c.childText(param, "identifier"), &typesys.Any{}, typesys.ArgStar2)
		case "keyword_separator":
			keywordOnly = true
		}
	}
	return callable
}

func positional(keywordOnly, hasDefault bool) typesys.ArgKind {
	switch {
	case keywordOnly && hasDefault:
		return typesys.ArgNamedOpt
	case keywordOnly:
		return typesys.ArgNamed
	case hasDefault:
		return typesys.ArgOpt
	default:
		return typesys.ArgPos
	}
}

func (c *extractionContext) appendArg(callable *typesys.Callable, name string, typ typesys.Type, kind typesys.ArgKind) {
	callable.ArgTypes = append(callable.ArgTypes, typ)
	callable.ArgNames = append(callable.ArgNames, name)
	callable.ArgKinds = append(callable.ArgKinds, kind)
}

func (c *extractionContext) parseFieldType(node *sitter.Node, field string) typesys.Type {
	child := node.ChildByFieldName(field)
	if child == nil {
		return &typesys.Any{}
	}
	return c.parseTypeNode(child)
}

// extractClass builds a class record: header flags, a syntactic
// approximation of the MRO (the class itself, its declared bases, then
// object), and the recursively extracted member scope.
func (c *extractionContext) extractClass(node *sitter.Node, prefix string, scope typesys.Scope, decorators []string) {
	name := c.childText(node, "identifier")
	if name == "" {
		return
	}
	fullName := prefix + "." + name

	def := &typesys.ClassDef{
		FullName: fullName,
		MRO:      []string{fullName},
		Names:    make(typesys.Scope),
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.ChildCount(); i++ {
			base := supers.Child(i)
			kind := base.Kind()
			if kind != "identifier" && kind != "attribute" {
				continue
			}
			baseName := c.text(base)
			switch {
			case baseName == "ABC" || strings.HasSuffix(baseName, ".ABC"):
				def.Abstract = true
			case strings.HasSuffix(baseName, "Enum"):
				def.Enum = true
			case baseName == "NamedTuple" || strings.HasSuffix(baseName, ".NamedTuple"):
				def.NamedTuple = true
			}
			def.MRO = append(def.MRO, c.qualifyBase(baseName))
		}
	}
	def.MRO = append(def.MRO, "builtins.object")

	body := node.ChildByFieldName("body")
	c.extractBlock(body, fullName, def.Names)

	// A class is also abstract when any member is declared abstract.
	if !def.Abstract && c.hasAbstractMember(body) {
		def.Abstract = true
	}

	scope[name] = &typesys.SymbolEntry{
		Kind:     typesys.KindDef,
		Public:   isPublicName(name),
		FullName: fullName,
		Def:      def,
	}
}

func (c *extractionContext) hasAbstractMember(body *sitter.Node) bool {
	if body == nil {
		return false
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		if stmt.Kind() != "decorated_definition" {
			continue
		}
		for j := uint(0); j < stmt.ChildCount(); j++ {
			child := stmt.Child(j)
			if child.Kind() != "decorator" {
				continue
			}
			text := strings.TrimPrefix(c.text(child), "@")
			if text == "abstractmethod" || strings.HasSuffix(text, ".abstractmethod") {
				return true
			}
		}
	}
	return false
}

// qualifyBase resolves a base class name to a fully qualified guess: dotted
// names pass through, known builtins map into builtins, bare names qualify
// into the current module.
func (c *extractionContext) qualifyBase(name string) string {
	if strings.ContainsRune(name, '.') {
		return name
	}
	if builtin, ok := builtinClasses[name]; ok {
		return builtin
	}
	return c.module + "." + name
}
