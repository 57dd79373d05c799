// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/tools/go/ast/astutil"
)

// Directive marks an interface as part of the generated API surface.
const Directive = "//sxgen:api"

type sourceFile struct {
	ast *ast.File
	// imports maps the name a file uses for a package to its path.
	imports map[string]string
}

// Scan parses the non-test Go files of dirs, which must form a single
// package, and returns its annotated surface. importPath is the package's
// import path as seen by generated code.
func Scan(importPath string, dirs ...string) (*API, error) {
	fset := token.NewFileSet()
	var files []sourceFile
	pkgName := ""

	for _, dir := range dirs {
		matches, err := doublestar.Glob(os.DirFS(dir), "*.go")
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		slices.Sort(matches)
		for _, name := range matches {
			if strings.HasSuffix(name, "_test.go") {
				continue
			}
			path := filepath.Join(dir, name)
			f, err := parser.ParseFile(fset, path, nil, parser.ParseComments|parser.SkipObjectResolution)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			if pkgName == "" {
				pkgName = f.Name.Name
			} else if f.Name.Name != pkgName {
				return nil, fmt.Errorf("%s: package %s, expected %s", path, f.Name.Name, pkgName)
			}
			files = append(files, sourceFile{ast: f, imports: fileImports(f)})
		}
	}
	if pkgName == "" {
		return nil, fmt.Errorf("no Go files in %s", strings.Join(dirs, ", "))
	}

	api := &API{Package: pkgName, ImportPath: importPath, Imports: map[string]string{}}

	annotated := map[string]bool{}
	for _, f := range files {
		for _, spec := range annotatedInterfaces(f.ast) {
			annotated[spec.ts.Name.Name] = true
		}
	}

	for _, f := range files {
		for _, spec := range annotatedInterfaces(f.ast) {
			iface := &Interface{Name: spec.ts.Name.Name, Doc: spec.doc}
			for _, field := range spec.it.Methods.List {
				ft, ok := field.Type.(*ast.FuncType)
				if !ok || len(field.Names) == 0 {
					// Embedded interfaces are not part of the generated surface.
					continue
				}
				for _, name := range field.Names {
					if !name.IsExported() {
						continue
					}
					m := scanMethod(name.Name, field, ft, pkgName, iface.Name, annotated)
					iface.Methods = append(iface.Methods, m)
				}
				collectImports(ft, f.imports, api.Imports)
			}
			slices.SortFunc(iface.Methods, func(a, b *Method) int { return strings.Compare(a.Name, b.Name) })
			api.Interfaces = append(api.Interfaces, iface)
		}
	}
	slices.SortFunc(api.Interfaces, func(a, b *Interface) int { return strings.Compare(a.Name, b.Name) })
	return api, nil
}

type annotatedSpec struct {
	ts  *ast.TypeSpec
	it  *ast.InterfaceType
	doc string
}

func annotatedInterfaces(f *ast.File) []annotatedSpec {
	var out []annotatedSpec
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			it, ok := ts.Type.(*ast.InterfaceType)
			if !ok || !ts.Name.IsExported() || ts.TypeParams != nil {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			if !hasDirective(doc) {
				continue
			}
			out = append(out, annotatedSpec{ts: ts, it: it, doc: strings.TrimSpace(doc.Text())})
		}
	}
	return out
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == Directive {
			return true
		}
	}
	return false
}

// fileImports maps the names f uses for its imports to their paths.
func fileImports(f *ast.File) map[string]string {
	out := make(map[string]string, len(f.Imports))
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := defaultImportName(path)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		out[name] = path
	}
	return out
}

// defaultImportName guesses a package name from its path, skipping a
// trailing major version element.
func defaultImportName(path string) string {
	elems := strings.Split(path, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && len(name) > 1 && name[0] == 'v' && strings.Trim(name[1:], "0123456789") == "" {
		name = elems[len(elems)-2]
	}
	return strings.TrimPrefix(name, "go-")
}

// collectImports records the packages referenced by selector expressions
// in ft.
func collectImports(ft *ast.FuncType, known, into map[string]string) {
	ast.Inspect(ft, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if x, ok := sel.X.(*ast.Ident); ok {
			if path, ok := known[x.Name]; ok {
				into[path] = x.Name
			}
		}
		return false
	})
}

// qualify rewrites bare package-level identifiers in expr as pkg.Ident and
// returns the rendered type. It reports false when expr names an unexported
// package-level identifier. expr is not modified.
func qualify(expr ast.Expr, pkg string) (string, bool) {
	exported := true
	copied := astutil.Apply(cloneExpr(expr), func(c *astutil.Cursor) bool {
		switch c.Parent().(type) {
		case *ast.SelectorExpr:
			return false
		case *ast.Field:
			if c.Name() == "Names" {
				return false
			}
		}
		id, ok := c.Node().(*ast.Ident)
		if !ok || types.Universe.Lookup(id.Name) != nil {
			return true
		}
		if !id.IsExported() {
			exported = false
		}
		c.Replace(&ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(id.Name)})
		return false
	}, nil)
	return types.ExprString(copied.(ast.Expr)), exported
}

// cloneExpr deep-copies the type expressions a method signature can hold.
func cloneExpr(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.Ident:
		return ast.NewIdent(e.Name)
	case *ast.SelectorExpr:
		return &ast.SelectorExpr{X: cloneExpr(e.X), Sel: ast.NewIdent(e.Sel.Name)}
	case *ast.StarExpr:
		return &ast.StarExpr{X: cloneExpr(e.X)}
	case *ast.ArrayType:
		var n ast.Expr
		if e.Len != nil {
			n = cloneExpr(e.Len)
		}
		return &ast.ArrayType{Len: n, Elt: cloneExpr(e.Elt)}
	case *ast.MapType:
		return &ast.MapType{Key: cloneExpr(e.Key), Value: cloneExpr(e.Value)}
	case *ast.ChanType:
		return &ast.ChanType{Dir: e.Dir, Value: cloneExpr(e.Value)}
	case *ast.Ellipsis:
		return &ast.Ellipsis{Elt: cloneExpr(e.Elt)}
	case *ast.FuncType:
		return &ast.FuncType{Params: cloneFields(e.Params), Results: cloneFields(e.Results)}
	case *ast.IndexExpr:
		return &ast.IndexExpr{X: cloneExpr(e.X), Index: cloneExpr(e.Index)}
	case *ast.IndexListExpr:
		idx := make([]ast.Expr, len(e.Indices))
		for i, x := range e.Indices {
			idx[i] = cloneExpr(x)
		}
		return &ast.IndexListExpr{X: cloneExpr(e.X), Indices: idx}
	case *ast.ParenExpr:
		return &ast.ParenExpr{X: cloneExpr(e.X)}
	default:
		// Literal array lengths, inline interfaces and structs are kept as is.
		return expr
	}
}

func cloneFields(fl *ast.FieldList) *ast.FieldList {
	if fl == nil {
		return nil
	}
	out := &ast.FieldList{List: make([]*ast.Field, len(fl.List))}
	for i, f := range fl.List {
		names := make([]*ast.Ident, len(f.Names))
		for j, n := range f.Names {
			names[j] = ast.NewIdent(n.Name)
		}
		out.List[i] = &ast.Field{Names: names, Type: cloneExpr(f.Type)}
	}
	return out
}

func scanMethod(name string, field *ast.Field, ft *ast.FuncType, pkg, owner string, annotated map[string]bool) *Method {
	m := &Method{Name: name, Doc: strings.TrimSpace(field.Doc.Text())}
	render := func(e ast.Expr) string {
		out, ok := qualify(e, pkg)
		if !ok && m.Problem == "" {
			m.Problem = ReasonUnexportedType
		}
		return out
	}

	type rawParam struct {
		name string
		expr ast.Expr
	}
	var params []rawParam
	if ft.Params != nil {
		for _, f := range ft.Params.List {
			if len(f.Names) == 0 {
				params = append(params, rawParam{expr: f.Type})
				continue
			}
			for _, n := range f.Names {
				params = append(params, rawParam{name: n.Name, expr: f.Type})
			}
		}
	}
	var results []ast.Expr
	if ft.Results != nil {
		for _, f := range ft.Results.List {
			for range max(len(f.Names), 1) {
				results = append(results, f.Type)
			}
		}
	}

	callbackAt := -1
	for i, p := range params {
		if _, ok := p.expr.(*ast.FuncType); !ok {
			continue
		}
		if callbackAt >= 0 {
			m.Problem = ReasonMultipleCallbacks
		}
		callbackAt = i
	}

	for i, p := range params {
		if i == callbackAt {
			continue
		}
		param := Param{Name: p.name, Type: render(p.expr)}
		if el, ok := p.expr.(*ast.Ellipsis); ok {
			param.Variadic = true
			param.Type = render(el.Elt)
		}
		m.Params = append(m.Params, param)
	}
	for _, r := range results {
		m.Results = append(m.Results, render(r))
	}

	if callbackAt < 0 {
		m.Shape = ShapeSync
		switch {
		case len(results) == 1 && identName(results[0]) == owner:
			m.Shape = ShapeFluent
		case len(results) == 1 && annotated[identName(results[0])]:
			m.ResultRebind = identName(results[0])
		case len(results) == 2 && annotated[identName(results[0])] && identName(results[1]) == "error":
			m.ResultRebind = identName(results[0])
		}
		return m
	}

	cb := params[callbackAt].expr.(*ast.FuncType)
	m.Callback = render(cb)
	if m.Problem != "" {
		return m
	}
	if callbackAt != len(params)-1 {
		m.Problem = ReasonCallbackNotLast
		return m
	}
	if len(results) > 0 {
		m.Problem = ReasonAsyncResults
		return m
	}
	if cb.Results != nil && len(cb.Results.List) > 0 {
		m.Problem = ReasonCallbackSignature
		return m
	}

	var values []ast.Expr
	if cb.Params != nil {
		for _, f := range cb.Params.List {
			for range max(len(f.Names), 1) {
				values = append(values, f.Type)
			}
		}
	}
	hasErr := len(values) > 0 && identName(values[len(values)-1]) == "error"
	if hasErr {
		values = values[:len(values)-1]
		m.Shape = ShapeAsync
	} else {
		m.Shape = ShapeStream
	}
	switch {
	case len(values) > 1:
		m.Problem = ReasonCallbackArity
		return m
	case len(values) == 0 && !hasErr:
		m.Problem = ReasonCallbackSignature
		return m
	case len(values) == 1:
		if _, variadic := values[0].(*ast.Ellipsis); variadic {
			m.Problem = ReasonCallbackSignature
			return m
		}
		m.Value = render(values[0])
		if annotated[identName(values[0])] {
			m.ValueRebind = identName(values[0])
		}
	}
	return m
}

func identName(expr ast.Expr) string {
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}
