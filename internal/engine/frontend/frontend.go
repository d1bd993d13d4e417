// Package frontend turns annotated Python source into the scope model the
// snapshot engine consumes. It is a structural extractor, not a type
// checker: names it cannot resolve stay unresolved references, which the
// snapshot engine compares by spelled shape.
package frontend

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"snapdiff/internal/core/errors"
	"snapdiff/internal/engine/typesys"
)

// Extractor parses Python sources and builds module scopes.
type Extractor struct {
	language *sitter.Language
}

func NewExtractor() *Extractor {
	return &Extractor{language: sitter.NewLanguage(tree_sitter_python.Language())}
}

// ExtractModule parses one source file and returns the scope of the module
// named by the dotted module path.
func (e *Extractor) ExtractModule(source []byte, module string) (typesys.Scope, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	ctx := &extractionContext{source: source, module: module}
	scope := make(typesys.Scope)
	ctx.extractBlock(tree.RootNode(), module, scope)
	return scope, nil
}

type extractionContext struct {
	source []byte
	module string
	// tvarSeq numbers type variable definitions within one module so that
	// distinct variables with the same display name stay distinct.
	tvarSeq int64
}

func (c *extractionContext) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.source[node.StartByte():node.EndByte()])
}

func (c *extractionContext) childText(node *sitter.Node, kind string) string {
	if node == nil {
		return ""
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return c.text(child)
		}
	}
	return ""
}

// extractBlock walks the statements of a module body or class body and fills
// scope. prefix is the fully qualified name of the enclosing scope.
func (c *extractionContext) extractBlock(block *sitter.Node, prefix string, scope typesys.Scope) {
	if block == nil {
		return
	}
	for i := uint(0); i < block.ChildCount(); i++ {
		stmt := block.Child(i)
		switch stmt.Kind() {
		case "import_statement":
			c.extractImport(stmt, scope)
		case "import_from_statement":
			c.extractFromImport(stmt, scope)
		case "function_definition":
			c.extractFunction(stmt, prefix, scope, nil)
		case "class_definition":
			c.extractClass(stmt, prefix, scope, nil)
		case "decorated_definition":
			c.extractDecorated(stmt, prefix, scope)
		case "expression_statement":
			c.extractExpression(stmt, prefix, scope)
		}
	}
}

func isPublicName(name string) bool {
	return name != "" && name[0] != '_'
}

// extractImport handles `import a.b` and `import a.b as c`: each binds a
// module reference in the local scope.
func (c *extractionContext) extractImport(node *sitter.Node, scope typesys.Scope) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			module := c.text(child)
			// `import a.b` binds the top-level package name.
			local := module
			if idx := indexByte(local, '.'); idx >= 0 {
				local = local[:idx]
			}
			scope[local] = &typesys.SymbolEntry{
				Kind:     typesys.KindModuleRef,
				Public:   isPublicName(local),
				FullName: module,
			}
		case "aliased_import":
			module := c.childText(child, "dotted_name")
			if module == "" {
				module = c.childText(child, "identifier")
			}
			alias := c.aliasName(child)
			if alias == "" {
				continue
			}
			scope[alias] = &typesys.SymbolEntry{
				Kind:     typesys.KindModuleRef,
				Public:   isPublicName(alias),
				FullName: module,
			}
		}
	}
}

// extractFromImport handles `from a import b [as c]`: each imported item is
// a reference owned by the source module, which the snapshot engine records
// as a shallow cross reference.
func (c *extractionContext) extractFromImport(node *sitter.Node, scope typesys.Scope) {
	module := ""
	sawImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "relative_import":
			module = trimLeftDots(c.text(child))
		case "dotted_name", "identifier":
			if !sawImport {
				module = c.text(child)
				continue
			}
			item := c.text(child)
			c.bindImportedItem(scope, module, item, item)
		case "import":
			sawImport = true
		case "aliased_import":
			item := c.childText(child, "dotted_name")
			if item == "" {
				item = c.childText(child, "identifier")
			}
			alias := c.aliasName(child)
			if alias == "" {
				alias = item
			}
			c.bindImportedItem(scope, module, item, alias)
		case "wildcard_import":
			// `from a import *` binds no statically knowable names here.
		}
	}
}

func (c *extractionContext) bindImportedItem(scope typesys.Scope, module, item, local string) {
	if item == "" || local == "" {
		return
	}
	fullName := item
	if module != "" {
		fullName = module + "." + item
	}
	scope[local] = &typesys.SymbolEntry{
		Kind:     typesys.KindDef,
		Public:   isPublicName(local),
		FullName: fullName,
		Def:      &typesys.VarDef{},
	}
}

// aliasName returns the name bound by an `x as y` clause.
func (c *extractionContext) aliasName(node *sitter.Node) string {
	sawAs := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "as" {
			sawAs = true
			continue
		}
		if sawAs && (child.Kind() == "identifier" || child.Kind() == "dotted_name") {
			return c.text(child)
		}
	}
	return ""
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func trimLeftDots(s string) string {
	for len(s) > 0 && s[0] == '.' {
		s = s[1:]
	}
	return s
}
