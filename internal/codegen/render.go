// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"
)

// GeneratedHeader prefixes every file the generator writes.
const GeneratedHeader = "// Code generated by sxbuild"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("codegen").Funcs(template.FuncMap{
	"comment": comment,
}).ParseFS(templateFS, "templates/*.tmpl"))

type (
	facadeFile struct {
		Package    string
		ImportPath string
		Imports    []importLine
		Types      []facadeType
	}

	importLine struct {
		Alias string
		Path  string
	}

	facadeType struct {
		Name    string
		Doc     string
		Core    string
		Methods []facadeMethod
	}

	facadeMethod struct {
		Receiver string
		Doc      string
		Name     string
		Params   string
		Results  string
		Body     string
	}

	// renderer turns an API into one idiom's facade for one target.
	renderer struct {
		target string
		idiom  Idiom
		api    *API
		pkg    string
		// emitted holds the interfaces that get a facade type.
		emitted  map[string]bool
		errs     []*GenerationError
		rendered int
	}
)

func comment(doc string) string {
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = "//"
			continue
		}
		lines[i] = "// " + l
	}
	return strings.Join(lines, "\n")
}

func newRenderer(target string, idiom Idiom, api *API, pkg string) *renderer {
	r := &renderer{target: target, idiom: idiom, api: api, pkg: pkg, emitted: map[string]bool{}}

	taken := map[string]bool{}
	for _, name := range idiom.reserved() {
		taken[name] = true
	}
	for _, iface := range api.Interfaces {
		if taken[iface.Name] || taken["New"+iface.Name] {
			r.fail(iface.Name, ReasonNameCollision)
			continue
		}
		taken[iface.Name] = true
		taken["New"+iface.Name] = true
		r.emitted[iface.Name] = true
	}
	return r
}

func (r *renderer) fail(member, reason string) {
	r.errs = append(r.errs, &GenerationError{Target: r.target, Member: member, Reason: reason})
}

// facade renders the facade source, formatted.
func (r *renderer) facade() ([]byte, error) {
	file := facadeFile{Package: r.pkg, ImportPath: r.api.ImportPath}

	candidates := map[string]string{r.api.ImportPath: r.api.Package, "context": "context"}
	maps.Copy(candidates, r.api.Imports)
	for _, p := range slices.Sorted(maps.Keys(candidates)) {
		line := importLine{Path: p}
		if name := candidates[p]; name != path.Base(p) {
			line.Alias = name
		}
		file.Imports = append(file.Imports, line)
	}

	for _, iface := range r.api.Interfaces {
		if !r.emitted[iface.Name] {
			continue
		}
		file.Types = append(file.Types, r.facadeType(iface))
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "facade.go.tmpl", file); err != nil {
		return nil, fmt.Errorf("render facade: %w", err)
	}
	return formatSource(r.pkg+".go", buf.Bytes())
}

// support renders the idiom's support file, formatted.
func (r *renderer) support() ([]byte, error) {
	var buf bytes.Buffer
	name := "support_" + string(r.idiom) + ".go.tmpl"
	if err := templates.ExecuteTemplate(&buf, name, map[string]string{"Package": r.pkg}); err != nil {
		return nil, fmt.Errorf("render support: %w", err)
	}
	return formatSource("support.go", buf.Bytes())
}

func (r *renderer) facadeType(iface *Interface) facadeType {
	core := r.api.Package + "." + iface.Name
	ft := facadeType{Name: iface.Name, Doc: iface.Doc, Core: core}
	if ft.Doc == "" {
		ft.Doc = fmt.Sprintf("%s wraps %s.", iface.Name, core)
	}

	// Names kept from the source are claimed first so that derived names
	// lose any collision.
	claimed := map[string]bool{"Delegate": true}
	var valid []*Method
	for _, m := range iface.Methods {
		switch {
		case m.Problem != "":
			r.fail(iface.Member(m), m.Problem)
		case m.Shape == ShapeStream && r.idiom == IdiomBlocking:
			r.fail(iface.Member(m), ReasonStreamBlocking)
		case claimed[m.Name]:
			r.fail(iface.Member(m), ReasonNameCollision)
		default:
			claimed[m.Name] = true
			valid = append(valid, m)
		}
	}

	for _, m := range valid {
		derived := r.derivedNames(m)
		collision := false
		for _, name := range derived {
			if claimed[name] {
				collision = true
			}
		}
		if collision {
			r.fail(iface.Member(m), ReasonNameCollision)
			continue
		}
		for _, name := range derived {
			claimed[name] = true
		}
		ft.Methods = append(ft.Methods, r.methods(iface, m)...)
		r.rendered++
	}
	return ft
}

func (r *renderer) derivedNames(m *Method) []string {
	switch {
	case r.idiom == IdiomRx && (m.Shape == ShapeAsync || m.Shape == ShapeStream):
		return []string{"Rx" + m.Name}
	case r.idiom == IdiomMutiny && m.Shape == ShapeAsync:
		return []string{m.Name + "AndAwait"}
	}
	return nil
}

// call describes one invocation of the delegate.
type call struct {
	params string
	args   string
}

func (r *renderer) newCall(m *Method) call {
	reserved := map[string]bool{
		"w": true, "ctx": true, "cb": true, "emit": true, "v": true, "err": true, "handler": true,
		r.api.Package: true,
	}
	for _, name := range r.api.Imports {
		reserved[name] = true
	}
	var params, args []string
	for i, p := range m.Params {
		name := p.Name
		if name == "" || name == "_" || reserved[name] {
			name = "p" + strconv.Itoa(i)
		}
		if p.Variadic {
			params = append(params, name+" ..."+p.Type)
			args = append(args, name+"...")
			continue
		}
		params = append(params, name+" "+p.Type)
		args = append(args, name)
	}
	return call{params: strings.Join(params, ", "), args: strings.Join(args, ", ")}
}

func (c call) withArg(arg string) string {
	if c.args == "" {
		return arg
	}
	return c.args + ", " + arg
}

func (c call) withParam(param string) string {
	if c.params == "" {
		return param
	}
	return c.params + ", " + param
}

func prefixed(param, rest string) string {
	if rest == "" {
		return param
	}
	return param + ", " + rest
}

func resultList(results []string) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + results[0]
	default:
		return " (" + strings.Join(results, ", ") + ")"
	}
}

func docOr(doc, fallback string) string {
	if doc != "" {
		return doc
	}
	return fallback
}

func (r *renderer) rebound(name string) bool {
	return name != "" && r.emitted[name]
}

// valueType is the facade type of a callback value.
func (r *renderer) valueType(m *Method) string {
	switch {
	case m.Value == "":
		return "struct{}"
	case r.rebound(m.ValueRebind):
		return "*" + m.ValueRebind
	default:
		return m.Value
	}
}

// adaptAsync returns the callback handed to the delegate for an async
// method, given cb of type func(valueType, error).
func (r *renderer) adaptAsync(m *Method) string {
	switch {
	case m.Value == "":
		return "func(err error) {\ncb(struct{}{}, err)\n}"
	case r.rebound(m.ValueRebind):
		return fmt.Sprintf("func(v %s, err error) {\ncb(New%s(v), err)\n}", m.Value, m.ValueRebind)
	default:
		return "cb"
	}
}

// adaptStream returns the callback handed to the delegate for a stream
// method, given emit of type func(valueType).
func (r *renderer) adaptStream(m *Method) string {
	if r.rebound(m.ValueRebind) {
		return fmt.Sprintf("func(v %s) {\nemit(New%s(v))\n}", m.Value, m.ValueRebind)
	}
	return "emit"
}

func (r *renderer) methods(iface *Interface, m *Method) []facadeMethod {
	c := r.newCall(m)
	fm := facadeMethod{Receiver: iface.Name, Name: m.Name, Doc: docOr(m.Doc, m.Name+" calls the wrapped method.")}

	switch m.Shape {
	case ShapeSync, ShapeFluent:
		return []facadeMethod{r.syncMethod(iface, m, c, fm)}
	case ShapeAsync:
		return r.asyncMethods(m, c, fm)
	case ShapeStream:
		return r.streamMethods(m, c, fm)
	}
	return nil
}

func (r *renderer) syncMethod(iface *Interface, m *Method, c call, fm facadeMethod) facadeMethod {
	fm.Params = c.params
	invoke := fmt.Sprintf("w.delegate.%s(%s)", m.Name, c.args)
	switch {
	case m.Shape == ShapeFluent:
		fm.Results = " *" + iface.Name
		fm.Body = invoke + "\nreturn w"
	case r.rebound(m.ResultRebind) && len(m.Results) == 1:
		fm.Results = " *" + m.ResultRebind
		fm.Body = fmt.Sprintf("return New%s(%s)", m.ResultRebind, invoke)
	case r.rebound(m.ResultRebind):
		fm.Results = fmt.Sprintf(" (*%s, error)", m.ResultRebind)
		fm.Body = fmt.Sprintf("v, err := %s\nif err != nil {\nreturn nil, err\n}\nreturn New%s(v), nil", invoke, m.ResultRebind)
	case len(m.Results) == 0:
		fm.Results = ""
		fm.Body = invoke
	default:
		fm.Results = resultList(m.Results)
		fm.Body = "return " + invoke
	}
	return fm
}

func (r *renderer) passthrough(m *Method, c call, fm facadeMethod) facadeMethod {
	fm.Params = c.withParam("handler " + m.Callback)
	fm.Body = fmt.Sprintf("w.delegate.%s(%s)", m.Name, c.withArg("handler"))
	return fm
}

func (r *renderer) asyncMethods(m *Method, c call, fm facadeMethod) []facadeMethod {
	vt := r.valueType(m)
	invoke := fmt.Sprintf("w.delegate.%s(%s)", m.Name, c.withArg(r.adaptAsync(m)))
	source := fmt.Sprintf("func(cb func(%s, error)) {\n%s\n}", vt, invoke)

	switch r.idiom {
	case IdiomBlocking:
		fm.Params = prefixed("ctx context.Context", c.params)
		if m.Value == "" {
			fm.Results = " error"
			fm.Body = fmt.Sprintf("_, err := await(ctx, %s)\nreturn err", source)
		} else {
			fm.Results = fmt.Sprintf(" (%s, error)", vt)
			fm.Body = fmt.Sprintf("return await(ctx, %s)", source)
		}
		return []facadeMethod{fm}

	case IdiomRx:
		rx := fm
		rx.Name = "Rx" + m.Name
		rx.Doc = fmt.Sprintf("%s is the Single form of %s.", rx.Name, m.Name)
		rx.Params = c.params
		if m.Value == "" {
			rx.Results = " Completable"
		} else {
			rx.Results = fmt.Sprintf(" Single[%s]", vt)
		}
		rx.Body = fmt.Sprintf("return newSingle(%s)", source)
		return []facadeMethod{r.passthrough(m, c, fm), rx}

	default:
		uni := fm
		uni.Params = c.params
		uni.Results = fmt.Sprintf(" Uni[%s]", vt)
		uni.Body = fmt.Sprintf("return newUni(%s)", source)

		wait := fm
		wait.Name = m.Name + "AndAwait"
		wait.Doc = fmt.Sprintf("%s calls %s and waits for its outcome or for ctx.", wait.Name, m.Name)
		wait.Params = prefixed("ctx context.Context", c.params)
		if m.Value == "" {
			wait.Results = " error"
			wait.Body = fmt.Sprintf("_, err := w.%s(%s).Await(ctx)\nreturn err", m.Name, c.args)
		} else {
			wait.Results = fmt.Sprintf(" (%s, error)", vt)
			wait.Body = fmt.Sprintf("return w.%s(%s).Await(ctx)", m.Name, c.args)
		}
		return []facadeMethod{uni, wait}
	}
}

func (r *renderer) streamMethods(m *Method, c call, fm facadeMethod) []facadeMethod {
	vt := r.valueType(m)
	invoke := fmt.Sprintf("w.delegate.%s(%s)", m.Name, c.withArg(r.adaptStream(m)))
	source := fmt.Sprintf("func(emit func(%s)) {\n%s\n}", vt, invoke)

	if r.idiom == IdiomRx {
		rx := fm
		rx.Name = "Rx" + m.Name
		rx.Doc = fmt.Sprintf("%s is the Observable form of %s.", rx.Name, m.Name)
		rx.Params = c.params
		rx.Results = fmt.Sprintf(" Observable[%s]", vt)
		rx.Body = fmt.Sprintf("return newObservable(%s)", source)
		return []facadeMethod{r.passthrough(m, c, fm), rx}
	}

	fm.Params = c.params
	fm.Results = fmt.Sprintf(" Multi[%s]", vt)
	fm.Body = fmt.Sprintf("return newMulti(%s)", source)
	return []facadeMethod{fm}
}

// formatSource drops unused imports and formats src in format-only mode.
func formatSource(filename string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("generated %s does not parse: %w", filename, err)
	}

	type spec struct{ name, path string }
	var unused []spec
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		if astutil.UsesImport(f, p) {
			continue
		}
		name := ""
		if imp.Name != nil {
			name = imp.Name.Name
		}
		unused = append(unused, spec{name: name, path: p})
	}
	for _, s := range unused {
		astutil.DeleteNamedImport(fset, f, s.name, s.path)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	return out, nil
}
