package sightread

import "fmt"

// ParseError is returned by every decoder and semantic converter in this
// package when the input cannot be accepted. Sightread never returns a
// partially-built Song: a failing parse returns a nil Song and a non-nil
// ParseError.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

func newParseError(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// invalidArgument reports misuse of the Song/TempoMap API (e.g. requesting
// an absent track, or a non-positive speedup) as distinct from a decode
// failure: callers can recover from these without re-parsing anything.
func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("sightread: "+format, args...)
}
