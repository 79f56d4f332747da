package domain

import "fmt"

// SourceFormatError reports a provider payload that is missing a required
// field or has an unexpected shape. It fails the whole adapter invocation:
// partial station or city data would break downstream joins.
type SourceFormatError struct {
	Source string // feed name, e.g. "paris", "nantes", "cities"
	Field  string // missing or malformed raw field
	Index  int    // record position in the payload, -1 if not record-scoped
	Err    error  // underlying cause, may be nil
}

func (e *SourceFormatError) Error() string {
	msg := fmt.Sprintf("source %s: bad field %q", e.Source, e.Field)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s at record %d", msg, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SourceFormatError) Unwrap() error { return e.Err }

func formatErr(source, field string, index int, err error) error {
	return &SourceFormatError{Source: source, Field: field, Index: index, Err: err}
}
