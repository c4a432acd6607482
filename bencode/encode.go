package bencode

import (
	"bytes"
	"errors"
	"io"

	jackpal "github.com/jackpal/bencode-go"
)

var errInvalidValue = errors.New("bencode: cannot encode invalid value")

// Marshal writes v to w in canonical form: dictionary keys come out sorted
// whatever order they were decoded in.
func Marshal(w io.Writer, v Value) error {
	if !v.valid() {
		return errInvalidValue
	}
	return jackpal.Marshal(w, v.Interface())
}

// EncodeToBytes is Marshal into a fresh byte slice.
func EncodeToBytes(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) valid() bool {
	switch v.kind {
	case Integer, ByteString:
		return true
	case List:
		for _, item := range v.list {
			if !item.valid() {
				return false
			}
		}
		return true
	case Dictionary:
		for _, e := range v.entries {
			if !e.Value.valid() {
				return false
			}
		}
		return true
	}
	return false
}
