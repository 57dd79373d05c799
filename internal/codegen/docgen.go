// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zero88/sxbuild/pkg/fspath"
)

// IndexFile is the member index written next to the fragments.
const IndexFile = "members.json"

// IndexEntry is one record of members.json.
type IndexEntry struct {
	Interface string `json:"interface"`
	Method    string `json:"method"`
	Shape     string `json:"shape"`
	Fragment  string `json:"fragment"`
	Problem   string `json:"problem,omitempty"`
}

// Docgen writes one AsciiDoc fragment per API member into dir, plus the
// members.json index. Fragments for members that no longer exist are
// removed. It returns the fragment file names in member order.
func Docgen(api *API, dir string) ([]string, error) {
	var (
		index []IndexEntry
		names []string
	)
	for _, iface := range api.Interfaces {
		for _, m := range iface.Methods {
			name := strings.ToLower(iface.Name + "-" + m.Name + ".adoc")
			if _, err := fspath.WriteIfChanged(filepath.Join(dir, name), fragment(api, iface, m), 0o644); err != nil {
				return nil, err
			}
			names = append(names, name)
			index = append(index, IndexEntry{
				Interface: iface.Name,
				Method:    m.Name,
				Shape:     m.Shape.String(),
				Fragment:  name,
				Problem:   m.Problem,
			})
		}
	}

	if index == nil {
		index = []IndexEntry{}
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", IndexFile, err)
	}
	if _, err := fspath.WriteIfChanged(filepath.Join(dir, IndexFile), append(data, '\n'), 0o644); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".adoc" || slices.Contains(names, e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return nil, fmt.Errorf("remove stale fragment: %w", err)
		}
	}
	return names, nil
}

func fragment(api *API, iface *Interface, m *Method) []byte {
	var b bytes.Buffer
	anchor := strings.ToLower(api.Package + "-" + iface.Name + "-" + m.Name)
	fmt.Fprintf(&b, "[[%s]]\n", anchor)
	fmt.Fprintf(&b, "=== %s.%s\n\n", iface.Name, m.Name)
	if m.Doc != "" {
		b.WriteString(m.Doc)
		b.WriteString("\n\n")
	}
	b.WriteString("[source,go]\n----\n")
	b.WriteString(signature(m))
	b.WriteString("\n----\n\n")
	fmt.Fprintf(&b, "Shape:: %s\n", m.Shape)
	if m.Problem != "" {
		fmt.Fprintf(&b, "Not generated:: %s\n", m.Problem)
	}
	return b.Bytes()
}

func signature(m *Method) string {
	var params []string
	for _, p := range m.Params {
		name := p.Name
		if name == "" {
			name = "_"
		}
		if p.Variadic {
			params = append(params, name+" ..."+p.Type)
			continue
		}
		params = append(params, name+" "+p.Type)
	}
	if m.Callback != "" {
		params = append(params, "callback "+m.Callback)
	}
	return m.Name + "(" + strings.Join(params, ", ") + ")" + resultList(m.Results)
}
