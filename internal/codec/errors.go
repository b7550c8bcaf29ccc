package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrReservedToken is returned when free text already contains an escape
	// token. Encoding it would make the decoded text differ from the input.
	ErrReservedToken = errors.New("text contains a reserved escape token")

	// ErrMalformedPreamble is returned when the first segment of a tree line
	// does not carry the fixed preamble fields.
	ErrMalformedPreamble = errors.New("malformed tree preamble")

	// ErrMalformedTalent is returned for a talent segment with a wrong field
	// count or a non-numeric numeric field.
	ErrMalformedTalent = errors.New("malformed talent segment")
)

// ParseError locates a decode failure inside a preset file.
type ParseError struct {
	Line    int // 1-based line in the file, 0 when decoding a single line
	Segment int // 0 is the preamble, talents start at 1
	Field   string
	Err     error
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("segment %d", e.Segment)
	if e.Line > 0 {
		loc = fmt.Sprintf("line %d %s", e.Line, loc)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s field %s: %v", loc, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
