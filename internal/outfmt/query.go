package outfmt

import (
	"context"
	"encoding/json"
	"io"
	"reflect"

	"github.com/siftscience/sift-cli/internal/filter"
)

type queryKey struct{}

// WithQuery adds a jq query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq query from context
func GetQuery(ctx context.Context) string {
	q, _ := ctx.Value(queryKey{}).(string)
	return q
}

// ApplyQuery runs query over v. v is round-tripped through JSON first so the
// query sees the same shape the JSON output would have.
func ApplyQuery(v any, query string) (any, error) {
	v = wrapSlice(v)
	if query == "" {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return filter.ApplyFromJSON(data, query)
}

// WriteJSONFiltered writes v as JSON after applying query.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	filtered, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSON(w, filtered, compact)
}

// wrapSlice turns top-level lists into {"items": [...]} so every JSON
// document is an object. Nil slices become empty lists.
func wrapSlice(v any) any {
	if v == nil {
		return v
	}
	switch v.(type) {
	case []byte, json.RawMessage:
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return v
	}
	if rv.IsNil() {
		return map[string]any{"items": []any{}}
	}
	return map[string]any{"items": v}
}
