package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Identifier is a listing identifier that may arrive as a JSON string or
// number. The zero value means the field was absent, null or empty.
type Identifier string

// UnmarshalJSON implements json.Unmarshaler.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identifier(NormalizeIdentifier(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// Booleans, objects and arrays carry no usable identity.
		*id = ""
		return nil //nolint:nilerr // unusable identifiers are treated as absent
	}
	*id = Identifier(NormalizeIdentifier(n.String()))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// String returns the identifier as a string.
func (id Identifier) String() string {
	return string(id)
}

// Empty reports whether the identifier is absent.
func (id Identifier) Empty() bool {
	return id == ""
}

// NormalizeIdentifier trims whitespace and rewrites integral numbers in
// exponent or decimal form ("9.6032188e7", "96032188.0") as plain digits.
func NormalizeIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, ".eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
