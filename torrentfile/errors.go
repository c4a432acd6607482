package torrentfile

import (
	"errors"
	"fmt"

	"github.com/vaguilera/torrentmeta/bencode"
)

// MapErrorKind classifies a schema violation.
type MapErrorKind int

const (
	MissingRequiredField MapErrorKind = iota + 1
	UnexpectedType
	InvalidTextEncoding
	RootNotADictionary
	ConflictingLayout
	MissingLayout
	InvalidValue
)

func (k MapErrorKind) String() string {
	switch k {
	case MissingRequiredField:
		return "missing required field"
	case UnexpectedType:
		return "unexpected type"
	case InvalidTextEncoding:
		return "invalid text encoding"
	case RootNotADictionary:
		return "root is not a dictionary"
	case ConflictingLayout:
		return "both length and files present"
	case MissingLayout:
		return "neither length nor files present"
	case InvalidValue:
		return "invalid value"
	}
	return fmt.Sprintf("MapErrorKind(%d)", int(k))
}

// MapError reports a decoded tree that does not fit the metainfo schema.
// Field uses the on-wire key names, e.g. "info.files[2].path[0]".
type MapError struct {
	Kind     MapErrorKind
	Field    string
	Expected bencode.Kind // UnexpectedType only
	Actual   bencode.Kind // UnexpectedType only
}

func (e *MapError) Error() string {
	switch e.Kind {
	case UnexpectedType:
		return fmt.Sprintf("torrentfile: %s: expected %s, got %s", e.Field, e.Expected, e.Actual)
	case RootNotADictionary:
		return fmt.Sprintf("torrentfile: %s (got %s)", e.Kind, e.Actual)
	}
	if e.Field == "" {
		return "torrentfile: " + e.Kind.String()
	}
	return fmt.Sprintf("torrentfile: %s: %s", e.Field, e.Kind)
}

// ErrPiecesMisaligned is returned by Info.PieceHashes when pieces is not a
// whole number of SHA-1 hashes.
var ErrPiecesMisaligned = errors.New("torrentfile: pieces length is not a multiple of 20")

// ErrUnsafePath is returned by Span.FilePath for paths that do not stay
// under the given root.
var ErrUnsafePath = errors.New("torrentfile: file path escapes its root")
