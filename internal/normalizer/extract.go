package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ExtractObject returns the text between the first '{' and the last '}' of
// raw. Surrounding prose and code fences are discarded.
func ExtractObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", malformed(raw, "no JSON object found", nil)
	}
	return raw[start : end+1], nil
}

// DecodeObject extracts the JSON object embedded in raw and strictly decodes
// it into dest.
func DecodeObject(raw string, dest any) error {
	body, err := ExtractObject(raw)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(dest); err != nil {
		return malformed(raw, "invalid JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return malformed(raw, "trailing data after JSON object", err)
	}
	return nil
}

// flexString accepts any JSON scalar where a string is expected. Objects and
// arrays are kept as compact JSON text; null becomes "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return err
	}
	*f = flexString(compact.String())
	return nil
}

func (f flexString) String() string {
	return strings.TrimSpace(string(f))
}

// orUnspecified returns s, or Unspecified when s is blank.
func orUnspecified(s flexString) string {
	if v := s.String(); v != "" {
		return v
	}
	return Unspecified
}

// jsonKind reports the first significant byte of a raw JSON value, or 0 when
// the value is absent or null.
func jsonKind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0
	}
	return trimmed[0]
}
