package jsondom

import (
	"errors"
	"fmt"

	"github.com/relex/jsondom/internal/kinds"
)

// ErrorKind classifies a failure the way spec §7 enumerates it.
type ErrorKind = kinds.ErrorKind

// Sentinel errors, one per ErrorKind, so callers can use errors.Is without
// depending on the concrete *Error type.
var (
	ErrInvalid         = errors.New(kinds.EInvalid.String())
	ErrOOM             = errors.New(kinds.EOOM.String())
	ErrBadToken        = errors.New(kinds.EBadToken.String())
	ErrBadNumber       = errors.New(kinds.EBadNumber.String())
	ErrBadEscape       = errors.New(kinds.EBadEscape.String())
	ErrBadUnicode      = errors.New(kinds.EBadUnicode.String())
	ErrDepth           = errors.New(kinds.EDepth.String())
	ErrLimit           = errors.New(kinds.ELimit.String())
	ErrDupKey          = errors.New(kinds.EDupKey.String())
	ErrNonfinite       = errors.New(kinds.ENonfinite.String())
	ErrTrailingGarbage = errors.New(kinds.ETrailingGarbage.String())
	ErrState           = errors.New(kinds.EState.String())
	ErrIncomplete      = errors.New(kinds.EIncomplete.String())
	ErrSchema          = errors.New(kinds.ESchema.String())
	ErrWrite           = errors.New(kinds.EWrite.String())
)

var sentinelByKind = map[ErrorKind]error{
	kinds.EInvalid:         ErrInvalid,
	kinds.EOOM:             ErrOOM,
	kinds.EBadToken:        ErrBadToken,
	kinds.EBadNumber:       ErrBadNumber,
	kinds.EBadEscape:       ErrBadEscape,
	kinds.EBadUnicode:      ErrBadUnicode,
	kinds.EDepth:           ErrDepth,
	kinds.ELimit:           ErrLimit,
	kinds.EDupKey:          ErrDupKey,
	kinds.ENonfinite:       ErrNonfinite,
	kinds.ETrailingGarbage: ErrTrailingGarbage,
	kinds.EState:           ErrState,
	kinds.EIncomplete:      ErrIncomplete,
	kinds.ESchema:          ErrSchema,
	kinds.EWrite:           ErrWrite,
}

// Error is the parse/validation/write error record from spec §3: a code, a
// position, optional expected/actual token descriptors, and a context
// snippet clipped around the failure.
type Error struct {
	Kind     ErrorKind
	Message  string
	Offset   int
	Line     int
	Col      int
	Expected string // e.g. "comma ','", empty when not applicable
	Actual   string // e.g. "opening brace '{'", empty when not applicable

	// Snippet is a ±20-byte window of the input around Offset, with Caret
	// marking the failure position relative to the start of Snippet.
	Snippet string
	Caret   int
}

func (e *Error) Error() string {
	if e.Expected != "" || e.Actual != "" {
		return fmt.Sprintf("%s at line %d, column %d: expected %s, found %s",
			e.Kind, e.Line, e.Col, orNone(e.Expected), orNone(e.Actual))
	}
	return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind, e.Line, e.Col, e.Message)
}

func orNone(s string) string {
	if s == "" {
		return "<n/a>"
	}
	return s
}

// Unwrap exposes the sentinel error for e.Kind so errors.Is(err,
// jsondom.ErrDepth) works against a *Error returned from a parse/write call.
func (e *Error) Unwrap() error {
	if s, ok := sentinelByKind[e.Kind]; ok {
		return s
	}
	return nil
}

// snippetWindow clips a ±20-byte window around offset (spec §3 "a window of
// ±20 bytes around the error with a caret offset").
func snippetWindow(buf []byte, offset int) (snippet string, caret int) {
	const radius = 20
	lo := offset - radius
	if lo < 0 {
		lo = 0
	}
	hi := offset + radius
	if hi > len(buf) {
		hi = len(buf)
	}
	return string(buf[lo:hi]), offset - lo
}
