// Package fault defines the error taxonomy shared by every stage of the
// adapter-to-bridge translation. The translator is fail-fast: the first
// error anywhere in the tree walk aborts the whole translation.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind uint8

const (
	// KindCompilation marks a failure of the upstream compiler invocation.
	// Surfaced verbatim, never produced by the translator itself.
	KindCompilation Kind = iota
	// KindLoading marks malformed adapter input.
	KindLoading
	// KindInvalidAssumption marks an assumption about typical input shape
	// that proved false. Signals the subset needs extension, not a bug.
	KindInvalidAssumption
	// KindNotSupportedYet marks an enumerated, deliberately out-of-scope
	// LLVM feature.
	KindNotSupportedYet
	// KindInvariantViolation marks a broken internal consistency contract:
	// a bug in the translator or a malformed adapter tree.
	KindInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindCompilation:
		return "compilation"
	case KindLoading:
		return "loading"
	case KindInvalidAssumption:
		return "assumption"
	case KindNotSupportedYet:
		return "unsupported"
	case KindInvariantViolation:
		return "invariant"
	}
	return "unknown"
}

// Error is the single error type flowing out of the translation core.
type Error struct {
	Kind Kind
	Msg  string
	// Item is meaningful only for KindNotSupportedYet.
	Item Unsupported
}

func (e *Error) Error() string {
	if e.Kind == KindNotSupportedYet {
		return fmt.Sprintf("[girder::%s] %s", e.Kind, e.Item)
	}
	return fmt.Sprintf("[girder::%s] %s", e.Kind, e.Msg)
}

// Compilation wraps an upstream compiler failure.
func Compilation(format string, args ...any) *Error {
	return &Error{Kind: KindCompilation, Msg: fmt.Sprintf(format, args...)}
}

// Loading reports malformed adapter input.
func Loading(format string, args ...any) *Error {
	return &Error{Kind: KindLoading, Msg: fmt.Sprintf(format, args...)}
}

// InvalidAssumption reports input outside the assumed typical shape.
func InvalidAssumption(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidAssumption, Msg: fmt.Sprintf(format, args...)}
}

// NotSupportedYet reports an enumerated out-of-subset feature.
func NotSupportedYet(item Unsupported) *Error {
	return &Error{Kind: KindNotSupportedYet, Item: item}
}

// InvariantViolation reports a broken internal contract.
func InvariantViolation(format string, args ...any) *Error {
	return &Error{Kind: KindInvariantViolation, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the taxonomy kind from any error chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// UnsupportedOf extracts the unsupported tag when err is a
// KindNotSupportedYet error.
func UnsupportedOf(err error) (Unsupported, bool) {
	var fe *Error
	if errors.As(err, &fe) && fe.Kind == KindNotSupportedYet {
		return fe.Item, true
	}
	return 0, false
}
