// Package prompt renders the messages sent to the model for one documentation task: a system message fixing the reply format, and a
// kind-specific user message carrying the snippet.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/codalotl/autodoc/internal/task"
)

//go:embed fragments/*.md
var fragments embed.FS

// DefaultCommentLanguage is used when Data.CommentLanguage is empty.
const DefaultCommentLanguage = "English"

// Data is what the templates can reference.
type Data struct {
	Language        string // source language (ex: "Java")
	CommentLanguage string // natural language of the comment (ex: "English")
	Snippet         string
}

func (d Data) normalized() Data {
	d.Language = strings.TrimSpace(d.Language)
	if d.Language == "" {
		d.Language = "source code"
	}
	d.CommentLanguage = strings.TrimSpace(d.CommentLanguage)
	if d.CommentLanguage == "" {
		d.CommentLanguage = DefaultCommentLanguage
	}
	d.Snippet = strings.TrimRight(d.Snippet, " \t\r\n")
	return d
}

// System returns the system message for d's languages, including the language-specific comment format.
func System(d Data) (string, error) {
	d = d.normalized()
	sys, err := render("system.md", d)
	if err != nil {
		return "", err
	}

	styleName := "style-" + strings.ToLower(d.Language) + ".md"
	if _, err := fs.Stat(fragments, "fragments/"+styleName); err != nil {
		styleName = "style-default.md"
	}
	style, err := render(styleName, d)
	if err != nil {
		return "", err
	}
	return sys + "\n\n" + style, nil
}

// User returns the user message for a task of the given kind.
func User(kind task.Kind, d Data) (string, error) {
	switch kind {
	case task.KindType, task.KindFunction, task.KindTestFunction, task.KindField:
	default:
		return "", fmt.Errorf("prompt: no template for kind %q", kind)
	}
	return render(string(kind)+".md", d.normalized())
}

func render(name string, data Data) (string, error) {
	raw, err := fragments.ReadFile("fragments/" + name)
	if err != nil {
		return "", fmt.Errorf("prompt: read fragment %s: %w", name, err)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(strings.TrimSpace(string(raw)))
	if err != nil {
		return "", fmt.Errorf("prompt: parse fragment %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt: render fragment %s: %w", name, err)
	}
	return buf.String(), nil
}
