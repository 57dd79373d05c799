// SPDX-License-Identifier: MPL-2.0

package modgraph

import "github.com/zero88/sxbuild/pkg/buildfile"

// Settings is the inheritable part of a module. Effective settings are the
// parent's settings merged with the module's own overrides.
type Settings struct {
	Group      string
	Version    string
	Title      string
	Layer      *int
	Publishing buildfile.Publishing
	Features   buildfile.Features
}

// Merge returns s with every field set in o taking precedence.
func (s Settings) Merge(o Settings) Settings {
	out := s
	if o.Group != "" {
		out.Group = o.Group
	}
	if o.Version != "" {
		out.Version = o.Version
	}
	if o.Title != "" {
		out.Title = o.Title
	}
	if o.Layer != nil {
		layer := *o.Layer
		out.Layer = &layer
	}
	out.Publishing = mergePublishing(s.Publishing, o.Publishing)
	out.Features = mergeFeatures(s.Features, o.Features)
	return out
}

func overrides(m buildfile.Module) Settings {
	o := Settings{
		Group:   m.Group,
		Version: m.Version,
		Title:   m.Title,
		Layer:   m.Layer,
	}
	if m.Publishing != nil {
		o.Publishing = *m.Publishing
	}
	if m.Features != nil {
		o.Features = *m.Features
	}
	return o
}

func mergePublishing(base, o buildfile.Publishing) buildfile.Publishing {
	out := base
	if base.License != nil {
		l := *base.License
		out.License = &l
	}
	if base.Scm != nil {
		scm := *base.Scm
		out.Scm = &scm
	}
	if o.Homepage != "" {
		out.Homepage = o.Homepage
	}
	if o.License != nil {
		l := *o.License
		out.License = &l
	}
	if o.Scm != nil {
		scm := *o.Scm
		out.Scm = &scm
	}
	return out
}

// mergeFeatures never shares pointers with either input; capabilities
// mutate the result in place.
func mergeFeatures(base, o buildfile.Features) buildfile.Features {
	out := buildfile.Features{}
	for _, f := range []buildfile.Features{base, o} {
		if f.Zero88 != nil {
			v := *f.Zero88
			out.Zero88 = &v
		}
		if f.GitHub != nil {
			v := *f.GitHub
			out.GitHub = &v
		}
		if f.TestLogger != nil {
			tl := *f.TestLogger
			out.TestLogger = &tl
		}
	}
	return out
}
