// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestValues_CoversEveryId(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(RendererFailedId) {
		t.Fatalf("len(Values()) = %d, want %d", len(values), RendererFailedId)
	}
	for i, is := range values {
		if want := Id(i + 1); is.Id() != want {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, is.Id(), want)
		}
		if strings.TrimSpace(string(is.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", is.Id())
		}
	}
}

func TestIssue_Render(t *testing.T) {
	is := &Issue{id: 99, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/a"}}

	var gotMd string
	orig := render
	t.Cleanup(func() { render = orig })
	render = func(in, stylePath string) (string, error) {
		gotMd = in
		return "rendered:" + stylePath, nil
	}

	out, err := is.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "rendered:notty" {
		t.Errorf("Render() = %q", out)
	}
	if !strings.Contains(gotMd, "## See also") || !strings.Contains(gotMd, "https://example.com/a") {
		t.Errorf("markdown passed to renderer misses links: %q", gotMd)
	}
}

func TestIssue_RenderPropagatesError(t *testing.T) {
	orig := render
	t.Cleanup(func() { render = orig })
	boom := errors.New("boom")
	render = func(string, string) (string, error) { return "", boom }

	if _, err := Get(GenerationFailedId).Render("dark"); !errors.Is(err, boom) {
		t.Errorf("Render() error = %v, want %v", err, boom)
	}
}

func TestIssue_DocLinksIsCopy(t *testing.T) {
	t.Parallel()

	is := &Issue{docLinks: []HttpLink{"a"}}
	links := is.DocLinks()
	links[0] = "mutated"
	if is.DocLinks()[0] != "a" {
		t.Error("DocLinks() exposed internal slice")
	}
}
