// SPDX-License-Identifier: MPL-2.0

package docs

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/doc"
	"go/format"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Reference renders the documentation of the Go package in dir as
// markdown under the given title. It reports false when dir holds no
// non-test Go files.
func Reference(dir, importPath, title string) ([]byte, bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("list %s: %w", dir, err)
	}

	fset := token.NewFileSet()
	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, false, fmt.Errorf("parse %s: %w", name, err)
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, false, nil
	}

	pkg, err := doc.NewFromFiles(fset, files, importPath)
	if err != nil {
		return nil, false, fmt.Errorf("read package docs in %s: %w", dir, err)
	}

	w := &refWriter{fset: fset, pkg: pkg}
	w.printf("# %s\n\n", title)
	if importPath != "" {
		w.printf("`import %q`\n\n", importPath)
	}
	w.text(pkg.Doc)
	w.values("Constants", pkg.Consts)
	w.values("Variables", pkg.Vars)
	for _, f := range pkg.Funcs {
		w.fn("##", f)
	}
	for _, t := range pkg.Types {
		w.printf("## type %s\n\n", t.Name)
		w.decl(t.Decl)
		w.text(t.Doc)
		for _, v := range slices.Concat(t.Consts, t.Vars) {
			w.decl(v.Decl)
			w.text(v.Doc)
		}
		for _, f := range slices.Concat(t.Funcs, t.Methods) {
			w.fn("###", f)
		}
	}
	return w.buf.Bytes(), true, w.err
}

// RenderHTML converts reference markdown to an HTML fragment.
func RenderHTML(md []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := markdown.Convert(md, &out); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return out.Bytes(), nil
}

type refWriter struct {
	fset *token.FileSet
	pkg  *doc.Package
	buf  bytes.Buffer
	err  error
}

func (w *refWriter) printf(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
}

func (w *refWriter) text(comment string) {
	if comment == "" {
		return
	}
	w.buf.Write(w.pkg.Markdown(comment))
	w.buf.WriteString("\n")
}

func (w *refWriter) values(heading string, vals []*doc.Value) {
	if len(vals) == 0 {
		return
	}
	w.printf("## %s\n\n", heading)
	for _, v := range vals {
		w.decl(v.Decl)
		w.text(v.Doc)
	}
}

func (w *refWriter) fn(level string, f *doc.Func) {
	name := f.Name
	if f.Recv != "" {
		name = "(" + f.Recv + ") " + name
	}
	w.printf("%s func %s\n\n", level, name)
	w.decl(f.Decl)
	w.text(f.Doc)
}

// decl prints a declaration without its doc comment or body.
func (w *refWriter) decl(node ast.Decl) {
	switch d := node.(type) {
	case *ast.GenDecl:
		cp := *d
		cp.Doc = nil
		node = &cp
	case *ast.FuncDecl:
		cp := *d
		cp.Doc = nil
		cp.Body = nil
		node = &cp
	}
	var code bytes.Buffer
	if err := format.Node(&code, w.fset, node); err != nil {
		if w.err == nil {
			w.err = fmt.Errorf("print declaration: %w", err)
		}
		return
	}
	w.printf("```go\n%s\n```\n\n", code.String())
}
