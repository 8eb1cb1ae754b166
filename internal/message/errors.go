package message

import "fmt"

// Kind enumerates the parser-level error dispositions of spec.md §7.
type Kind int

const (
	KindMalformedRequest Kind = iota
	KindOversizeHeader
	KindOversizeBody
)

// ParseError is a typed error carrying a Kind, the way
// WhileEndless-go-rawhttp's pkg/errors.Error pairs a kind enum with a
// wrapped cause -- the connection worker's dispatch table (spec.md §4.18,
// §7) switches on Kind rather than comparing sentinel identity.
type ParseError struct {
	Kind  Kind
	Cause error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindOversizeHeader:
		return fmt.Sprintf("message: oversize header: %v", e.Cause)
	case KindOversizeBody:
		return fmt.Sprintf("message: oversize body: %v", e.Cause)
	default:
		return fmt.Sprintf("message: malformed request: %v", e.Cause)
	}
}

func (e *ParseError) Unwrap() error { return e.Cause }

func malformed(format string, args ...any) error {
	return &ParseError{Kind: KindMalformedRequest, Cause: fmt.Errorf(format, args...)}
}

func oversizeHeader(format string, args ...any) error {
	return &ParseError{Kind: KindOversizeHeader, Cause: fmt.Errorf(format, args...)}
}

func oversizeBody(format string, args ...any) error {
	return &ParseError{Kind: KindOversizeBody, Cause: fmt.Errorf(format, args...)}
}
