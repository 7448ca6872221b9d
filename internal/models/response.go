package models

// ResponseKind discriminates the three shapes a model response can take.
// The kind is decided exactly once, at the parsing boundary; downstream code
// switches on Kind instead of probing for keys.
type ResponseKind string

const (
	// KindParsed means the output round-tripped through JSON (directly or
	// after stripping a markdown code fence) into an object.
	KindParsed ResponseKind = "parsed"

	// KindRawText means the output could not be parsed as JSON and is
	// carried verbatim.
	KindRawText ResponseKind = "raw_text"

	// KindError means the invocation itself failed (non-zero exit, timeout,
	// missing executable) or the model reported an error.
	KindError ResponseKind = "error"
)

// Response is the tagged union produced by every model invocation.
// Exactly one of Fields, Raw, or Message/Stderr is meaningful, selected by Kind.
type Response struct {
	Kind    ResponseKind           `json:"kind"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Raw     string                 `json:"raw,omitempty"`
	Message string                 `json:"message,omitempty"`
	Stderr  string                 `json:"stderr,omitempty"`
}

// ParsedResponse wraps a decoded JSON object.
func ParsedResponse(fields map[string]interface{}) *Response {
	return &Response{Kind: KindParsed, Fields: fields}
}

// RawTextResponse wraps output that could not be decoded as JSON.
func RawTextResponse(raw string) *Response {
	return &Response{Kind: KindRawText, Raw: raw}
}

// ErrorResponse wraps an invocation failure. stderr may be empty.
func ErrorResponse(message, stderr string) *Response {
	return &Response{Kind: KindError, Message: message, Stderr: stderr}
}

// IsError reports whether the response represents a failed invocation.
func (r *Response) IsError() bool {
	return r != nil && r.Kind == KindError
}

// StringField returns the named field as a string, or "" when the response is
// not parsed or the field is absent or not a string.
func (r *Response) StringField(key string) string {
	if r == nil || r.Kind != KindParsed {
		return ""
	}
	s, _ := r.Fields[key].(string)
	return s
}

// StringSliceField returns the named field as a string slice. JSON arrays
// decode as []interface{}, so each element is converted individually;
// non-string elements are skipped.
func (r *Response) StringSliceField(key string) []string {
	if r == nil || r.Kind != KindParsed {
		return nil
	}
	raw, ok := r.Fields[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// BoolField returns the named field as a bool plus a presence flag.
func (r *Response) BoolField(key string) (bool, bool) {
	if r == nil || r.Kind != KindParsed {
		return false, false
	}
	v, present := r.Fields[key]
	if !present {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// FloatField returns the named field as a float64, or the fallback when
// absent or not numeric.
func (r *Response) FloatField(key string, fallback float64) float64 {
	if r == nil || r.Kind != KindParsed {
		return fallback
	}
	if f, ok := r.Fields[key].(float64); ok {
		return f
	}
	return fallback
}
