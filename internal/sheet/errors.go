package sheet

import "fmt"

// ParseError means the file as a whole could not be read; no row was
// processed.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Msg, e.Err)
	}
	return "parse: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(msg string, err error) error { return &ParseError{Msg: msg, Err: err} }
