// Package render turns named templates plus a context into typed resource
// objects. The engine only depends on the Renderer interface; the shipped
// implementation uses Go templates with the sprig function map.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	yamlutil "k8s.io/apimachinery/pkg/util/yaml"
)

// Renderer produces manifest text from a named template and a context.
type Renderer interface {
	Render(name string, context map[string]any) (string, error)
}

type templateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the given template sources, keyed by name.
func NewTemplateRenderer(sources map[string]string) (Renderer, error) {
	root := template.New("").Funcs(sprig.TxtFuncMap())
	for name, src := range sources {
		if _, err := root.New(name).Parse(src); err != nil {
			return nil, fmt.Errorf("parsing template %q: %w", name, err)
		}
	}
	return &templateRenderer{templates: root}, nil
}

func (r *templateRenderer) Render(name string, context map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, context); err != nil {
		return "", fmt.Errorf("rendering template %q: %w", name, err)
	}
	return buf.String(), nil
}

// ParseMulti splits multi-document YAML or JSON text into resource objects.
// Empty documents are skipped.
func ParseMulti(text string) ([]*unstructured.Unstructured, error) {
	decoder := yamlutil.NewYAMLOrJSONDecoder(strings.NewReader(text), 4096)

	var resources []*unstructured.Unstructured
	for {
		raw := map[string]any{}
		if err := decoder.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("parsing manifest document: %w", err)
		}
		if len(raw) == 0 {
			continue
		}
		resources = append(resources, &unstructured.Unstructured{Object: raw})
	}
	return resources, nil
}
