// SPDX-License-Identifier: MPL-2.0

package docs

import (
	"fmt"

	yaml "go.yaml.in/yaml/v3"
)

// DescriptorFile is the Antora component descriptor written at the bundle root.
const DescriptorFile = "antora.yml"

type component struct {
	Name     string        `yaml:"name"`
	Title    string        `yaml:"title"`
	Version  string        `yaml:"version"`
	Nav      []string      `yaml:"nav,omitempty"`
	Asciidoc asciidocBlock `yaml:"asciidoc"`
}

type asciidocBlock struct {
	Attributes map[string]string `yaml:"attributes"`
}

func descriptor(meta Meta, nav []string) ([]byte, error) {
	attrs := meta.Attributes()
	attrs["javadoc-title"] = meta.APITitle()
	c := component{
		Name:     meta.ProjectName,
		Title:    meta.Title,
		Version:  meta.Version,
		Nav:      nav,
		Asciidoc: asciidocBlock{Attributes: attrs},
	}
	if c.Title == "" {
		c.Title = meta.ProjectName
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", DescriptorFile, err)
	}
	return data, nil
}
