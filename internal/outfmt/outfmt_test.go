package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Text, false},
		{"text", Text, false},
		{"JSON", JSON, false},
		{"yaml", Text, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("Parse(%q) = %v, %v", tt.in, got, err)
		}
	}
	if JSON.String() != "json" || Text.String() != "text" {
		t.Error("String() mismatch")
	}
}

func TestIsJSON(t *testing.T) {
	ctx := context.Background()
	if IsJSON(ctx) {
		t.Error("default mode is text")
	}
	if !IsJSON(WithMode(ctx, JSON)) {
		t.Error("JSON mode should be structured")
	}
	if !IsJSON(WithQuery(ctx, ".body")) {
		t.Error("a query implies structured output")
	}
	if !IsJSON(WithTemplate(ctx, "{{.x}}")) {
		t.Error("a template implies structured output")
	}
}

func TestWriteJSON_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]string{"q": "a&b<c>"}, true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"q\":\"a&b<c>\"}\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatter_OutputJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithMode(context.Background(), JSON)
	f := NewFormatter(ctx, &buf, &buf)

	if err := f.Output(map[string]any{"http_status_code": 200}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "{\n  \"http_status_code\": 200\n}\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatter_OutputQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithCompact(WithQuery(context.Background(), ".body.status"), true)
	f := NewFormatter(ctx, &buf, &buf)

	if err := f.Output(map[string]any{"body": map[string]any{"status": 51}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "51" {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatter_OutputSliceWrapped(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithCompact(WithMode(context.Background(), JSON), true)
	f := NewFormatter(ctx, &buf, &buf)

	var none []string
	if err := f.Output(none); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `{"items":[]}` {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatter_OutputTemplate(t *testing.T) {
	type envelope struct {
		Status int    `json:"http_status_code"`
		URL    string `json:"url"`
	}
	var buf bytes.Buffer
	ctx := WithTemplate(context.Background(), `{{.http_status_code}} {{.url}}`)
	f := NewFormatter(ctx, &buf, &buf)

	if err := f.Output(envelope{Status: 204, URL: "https://api.sift.com/v205/users/u/labels"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "204 https://api.sift.com/v205/users/u/labels\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatter_TextWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(context.Background(), &buf, &buf)
	if err := f.Output(map[string]any{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("text mode Output wrote %q", buf.String())
	}
}

func TestFormatter_TableAndKeyValues(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewFormatter(context.Background(), &out, &errOut)

	if !f.StartTable([]string{"USER", "SCORE"}) {
		t.Fatal("text mode should render tables")
	}
	f.Row("u1", "0.42")
	if err := f.EndTable(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "USER") || !strings.Contains(out.String(), "0.42") {
		t.Errorf("table = %q", out.String())
	}

	out.Reset()
	if err := f.KeyValues(map[string]any{"status": 0, "error_message": "OK", "skipped": nil}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "error_message:") {
		t.Errorf("key values = %q", out.String())
	}

	f.Empty("No merchants found")
	if !strings.Contains(errOut.String(), "No merchants found") {
		t.Error("empty message should go to stderr")
	}
}

func TestWriteTemplate_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTemplate(&buf, nil, "{{.x")
	if err == nil || !strings.Contains(err.Error(), "invalid template") {
		t.Errorf("got %v", err)
	}
}

func TestWriteTemplate_Funcs(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"body": map[string]any{"status": 0}}
	if err := WriteTemplate(&buf, data, `{{json .body}}`); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"status\":0}\n" {
		t.Errorf("got %q", buf.String())
	}
}
