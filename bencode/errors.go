package bencode

import "fmt"

// ErrorKind classifies a syntax error found while decoding.
type ErrorKind int

const (
	UnexpectedEndOfInput ErrorKind = iota + 1
	InvalidIntegerFormat
	InvalidLengthPrefix
	TruncatedByteString
	UnterminatedContainer
	NonByteStringDictionaryKey
	UnsortedOrDuplicateDictionaryKeys
	MaxNestingDepthExceeded
	TrailingDataAfterValue
	InvalidValuePrefix
)

var kindNames = map[ErrorKind]string{
	UnexpectedEndOfInput:              "unexpected end of input",
	InvalidIntegerFormat:              "invalid integer format",
	InvalidLengthPrefix:               "invalid length prefix",
	TruncatedByteString:               "truncated byte string",
	UnterminatedContainer:             "unterminated container",
	NonByteStringDictionaryKey:        "dictionary key is not a byte string",
	UnsortedOrDuplicateDictionaryKeys: "unsorted or duplicate dictionary keys",
	MaxNestingDepthExceeded:           "maximum nesting depth exceeded",
	TrailingDataAfterValue:            "trailing data after value",
	InvalidValuePrefix:                "invalid value prefix",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// DecodeError reports malformed bencode and the byte offset where it was
// detected.
type DecodeError struct {
	Kind   ErrorKind
	Offset int
}

func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return "bencode: " + e.Kind.String()
	}
	return fmt.Sprintf("bencode: %s at offset %d", e.Kind, e.Offset)
}

// Is matches any DecodeError of the same kind, so that
// errors.Is(err, bencode.ErrTruncatedByteString) works regardless of offset.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is. Their Offset is -1.
var (
	ErrUnexpectedEndOfInput       = &DecodeError{Kind: UnexpectedEndOfInput, Offset: -1}
	ErrInvalidIntegerFormat       = &DecodeError{Kind: InvalidIntegerFormat, Offset: -1}
	ErrInvalidLengthPrefix        = &DecodeError{Kind: InvalidLengthPrefix, Offset: -1}
	ErrTruncatedByteString        = &DecodeError{Kind: TruncatedByteString, Offset: -1}
	ErrUnterminatedContainer      = &DecodeError{Kind: UnterminatedContainer, Offset: -1}
	ErrNonByteStringDictionaryKey = &DecodeError{Kind: NonByteStringDictionaryKey, Offset: -1}
	ErrUnsortedOrDuplicateKeys    = &DecodeError{Kind: UnsortedOrDuplicateDictionaryKeys, Offset: -1}
	ErrMaxNestingDepthExceeded    = &DecodeError{Kind: MaxNestingDepthExceeded, Offset: -1}
	ErrTrailingDataAfterValue     = &DecodeError{Kind: TrailingDataAfterValue, Offset: -1}
	ErrInvalidValuePrefix         = &DecodeError{Kind: InvalidValuePrefix, Offset: -1}
)
