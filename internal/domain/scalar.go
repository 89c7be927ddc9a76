package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Scalar is a JSON number or string. Two scalars are equal when their string
// forms are equal, so the id 5 and the key "5" refer to the same question.
type Scalar struct {
	text    string
	numeric bool
}

// StringScalar wraps a string value.
func StringScalar(s string) Scalar {
	return Scalar{text: s}
}

// IntScalar wraps an integer value.
func IntScalar(n int) Scalar {
	return Scalar{text: strconv.Itoa(n), numeric: true}
}

// String returns the comparison form of the value.
func (s Scalar) String() string {
	return s.text
}

// IsNumeric reports whether the value was a JSON number.
func (s Scalar) IsNumeric() bool {
	return s.numeric
}

// Equal compares two scalars by string form.
func (s Scalar) Equal(other Scalar) bool {
	return s.text == other.text
}

// numberForm returns the value re-read as a number, e.g. "05" -> "5".
func (s Scalar) numberForm() (string, bool) {
	trimmed := strings.TrimSpace(s.text)
	if trimmed == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return "", false
	}
	return formatNumber(f), true
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.numeric {
		return []byte(s.text), nil
	}
	return json.Marshal(s.text)
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("scalar: empty value")
	}
	switch {
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar{text: str}
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*s = Scalar{text: string(data)}
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("scalar: unsupported value %s", data)
		}
		*s = Scalar{text: formatNumber(f), numeric: true}
	}
	return nil
}

// formatNumber renders a float the way a JSON number prints as text: no
// trailing zeros and no exponent for ordinary magnitudes.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
