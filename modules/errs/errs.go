// Package errs defines the error type shared by every stage of the
// patch pipeline: parsing, matching, aligning, filtering and applying.
package errs

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Kind classifies which stage of the pipeline produced an Error.
type Kind int

const (
	// DiffParse is returned while parsing a unified diff.
	DiffParse Kind = iota
	// IO is returned for filesystem failures reading or writing artifacts.
	IO
	// Patch is returned while applying an aligned patch to a target.
	Patch
)

func (k Kind) String() string {
	switch k {
	case DiffParse:
		return "DiffParseError"
	case IO:
		return "IOError"
	case Patch:
		return "PatchError"
	default:
		return "UnknownError"
	}
}

// Error is the error type returned by the diff parser, the file
// artifact I/O and patch application. It carries a Kind alongside the plain message so callers can
// branch on the failing stage without parsing strings.
type Error struct {
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an Error with the given message and kind.
func New(message string, kind Kind) *Error {
	return &Error{Message: message, Kind: kind}
}

func location(skip int) (string, int) {
	pc, _, line, ok := runtime.Caller(skip)
	if !ok {
		return "?", line
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "?", line
	}
	return fn.Name(), line
}

// Errorf logs the call site of the failure via logrus and returns an
// *Error of the given kind carrying the formatted message.
func Errorf(kind Kind, format string, a ...any) error {
	fn, line := location(2)
	msg := fmt.Sprintf(format, a...)
	logrus.Errorf("%s:%d %s", fn, line, msg)
	return New(msg, kind)
}

// FromIOError wraps a generic I/O failure into a Patch-pipeline Error.
func FromIOError(err error) error {
	if err == nil {
		return nil
	}
	return New(err.Error(), IO)
}
