package outcome

import (
	"errors"
	"fmt"
)

// Kind identifies a class of run failure.
type Kind int

const (
	// Unknown is the kind of errors that were never classified.
	Unknown Kind = iota
	InvalidArguments
	RootNotFound
	ExtensionNotFound
	CompiledDirMissing
	NoValidVersions
	ModuleLoadFailed
	InstantiationFailed
	NoCompatibleExtension
	NoCommandSpecified
	CommandNotFound
	ExecutionFailed
	Internal
)

var kindNames = map[Kind]string{
	Unknown:               "Unknown",
	InvalidArguments:      "InvalidArguments",
	RootNotFound:          "RootNotFound",
	ExtensionNotFound:     "ExtensionNotFound",
	CompiledDirMissing:    "CompiledDirMissing",
	NoValidVersions:       "NoValidVersions",
	ModuleLoadFailed:      "ModuleLoadFailed",
	InstantiationFailed:   "InstantiationFailed",
	NoCompatibleExtension: "NoCompatibleExtension",
	NoCommandSpecified:    "NoCommandSpecified",
	CommandNotFound:       "CommandNotFound",
	ExecutionFailed:       "ExecutionFailed",
	Internal:              "Internal",
}

// String returns the kind's name, e.g. "CommandNotFound".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure. Message is the user-facing text; Err, when
// set, is the underlying cause and is returned unmodified by Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New returns a classified error with a formatted message and no cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a classified error carrying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Error returns the message, followed by the cause when there is one.
func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message == "":
		return e.Kind.String()
	default:
		return e.Message
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k})
// works as a kind test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// KindOf returns the kind of the first classified error in err's chain, or
// Unknown when there is none.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return Unknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
