package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decimal returns a JSON number that is encoded exactly as s. Use it for
// monetary amounts: "1253200.0" stays "1253200.0" on the wire, where a
// float64 would lose the trailing zero or drift.
func Decimal(s string) json.Number {
	return json.Number(s)
}

// encodeJSON marshals v without HTML escaping and without a trailing newline.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decodeJSON unmarshals data keeping numbers as json.Number so that large
// integers and decimals survive untouched.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level JSON value")
	}
	return nil
}

// copyMapping returns a shallow copy of m. Operations that add fields to a
// caller's payload work on the copy.
func copyMapping(m map[string]any, extra int) map[string]any {
	out := make(map[string]any, len(m)+extra)
	for k, v := range m {
		out[k] = v
	}
	return out
}
