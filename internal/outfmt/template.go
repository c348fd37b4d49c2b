package outfmt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"text/template"
)

type templateKey struct{}

// WithTemplate adds a template string to the context
func WithTemplate(ctx context.Context, tmpl string) context.Context {
	return context.WithValue(ctx, templateKey{}, tmpl)
}

// GetTemplate retrieves the template string from context
func GetTemplate(ctx context.Context) string {
	tmpl, _ := ctx.Value(templateKey{}).(string)
	return tmpl
}

var templateFuncs = template.FuncMap{
	"json": func(val any) (string, error) {
		return encodeTemplateJSON(val, true)
	},
	"pretty": func(val any) (string, error) {
		return encodeTemplateJSON(val, false)
	},
}

func encodeTemplateJSON(val any, compact bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := WriteJSON(buf, val, compact); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ParseTemplate checks tmpl without rendering it.
func ParseTemplate(tmpl string) (*template.Template, error) {
	t, err := template.New("output").Funcs(templateFuncs).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return nil, formatTemplateError("invalid template", err)
	}
	return t, nil
}

// WriteTemplate renders data using a Go text/template string. A trailing
// newline is added when the template does not end with one.
func WriteTemplate(w io.Writer, v any, tmpl string) error {
	t, err := ParseTemplate(tmpl)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return formatTemplateError("template execution error", err)
	}
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] != '\n' {
		buf.WriteByte('\n')
	}
	_, err = w.Write(buf.Bytes())
	return err
}

var templateLocationPattern = regexp.MustCompile(`:(\d+):(\d+):`)

func formatTemplateError(kind string, err error) error {
	msg := err.Error()
	if matches := templateLocationPattern.FindStringSubmatch(msg); len(matches) == 3 {
		return fmt.Errorf("%s at line %s, column %s: %w", kind, matches[1], matches[2], err)
	}
	return fmt.Errorf("%s: %w", kind, err)
}
