package firestore

import (
	"strconv"
	"strings"
	"time"
)

// Value is a Firestore REST typed value. Only one field is set.
type Value struct {
	NullValue      *string  `json:"nullValue,omitempty"`
	BooleanValue   *bool    `json:"booleanValue,omitempty"`
	IntegerValue   *string  `json:"integerValue,omitempty"` // int64 encoded as a string
	DoubleValue    *float64 `json:"doubleValue,omitempty"`
	TimestampValue *string  `json:"timestampValue,omitempty"`
	StringValue    *string  `json:"stringValue,omitempty"`
}

// Document is a Firestore document as returned by the REST API.
type Document struct {
	Name       string           `json:"name,omitempty"` // projects/<p>/databases/(default)/documents/<collection>/<id>
	Fields     map[string]Value `json:"fields,omitempty"`
	CreateTime string           `json:"createTime,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// ID returns the last path segment of the document name.
func (d Document) ID() string {
	if i := strings.LastIndex(d.Name, "/"); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

type listResponse struct {
	Documents     []Document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

// APIError is the Google error envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Status     string `json:"status"`
}

func (e *APIError) Error() string {
	return "firestore error " + e.Status + ": " + e.Message
}

func StringValue(s string) Value { return Value{StringValue: &s} }

func DoubleValue(f float64) Value { return Value{DoubleValue: &f} }

func IntegerValue(i int64) Value {
	s := strconv.FormatInt(i, 10)
	return Value{IntegerValue: &s}
}

func TimestampValue(t time.Time) Value {
	s := t.UTC().Format(time.RFC3339Nano)
	return Value{TimestampValue: &s}
}

// Number reads a numeric field. Besides double and integer values it accepts
// strings using "_" as a thousands separator ("300_000"), which is how the
// thresholds are often typed into the console.
func (v Value) Number() (float64, bool) {
	switch {
	case v.DoubleValue != nil:
		return *v.DoubleValue, true
	case v.IntegerValue != nil:
		i, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return 0, false
		}
		return float64(i), true
	case v.StringValue != nil:
		s := strings.ReplaceAll(strings.TrimSpace(*v.StringValue), "_", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String reads a string field.
func (v Value) String() (string, bool) {
	if v.StringValue == nil {
		return "", false
	}
	return *v.StringValue, true
}
