package readfiles

import "fmt"

// ReadError signals a malformed or unreadable mesh source. It aborts the
// current read; the pipeline orchestrator is the recovery point.
type ReadError struct {
	Msg string
}

func (e ReadError) Error() string {
	return e.Msg
}

func readErrorf(format string, args ...interface{}) {
	panic(ReadError{Msg: fmt.Sprintf(format, args...)})
}

// UnsupportedElementTypeError signals an element block whose type string
// has no entry in the element type lookup table
type UnsupportedElementTypeError struct {
	TypeName string
}

func (e UnsupportedElementTypeError) Error() string {
	return fmt.Sprintf("unsupported element type: %s", e.TypeName)
}
