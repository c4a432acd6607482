/*
Package bencode decodes the BitTorrent serialization format into a tree of
Values and encodes such trees back into canonical form.

	integer      i<decimal>e        i42e, i-3e, i0e
	byte string  <length>:<bytes>   4:spam
	list         l<values>e         l4:spami42ee
	dictionary   d<key><value>...e  d3:cow3:mooe

Decoding is strict by default: integers and lengths must be canonical and
dictionary keys must be byte strings in ascending byte order.
*/
package bencode

import (
	"bytes"
	"strconv"
)

// DefaultMaxDepth bounds list and dictionary nesting when Decoder.MaxDepth
// is not set.
const DefaultMaxDepth = 1000

// Decoder holds decoding options. The zero value is a strict decoder with
// DefaultMaxDepth.
type Decoder struct {
	// MaxDepth is the deepest list/dictionary nesting accepted. Values <= 0
	// select DefaultMaxDepth.
	MaxDepth int
	// Lenient accepts dictionary keys in any order. Duplicate keys are
	// rejected in both modes.
	Lenient bool
}

// Decode parses a single bencoded value and rejects anything after it.
func Decode(data []byte) (Value, error) {
	return Decoder{}.DecodeAll(data)
}

// Decode parses one value from the front of data and returns it along with
// the number of bytes it occupied.
func (d Decoder) Decode(data []byte) (Value, int, error) {
	s := &decodeState{data: data, maxDepth: d.MaxDepth, lenient: d.Lenient}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxDepth
	}
	v, err := s.value()
	if err != nil {
		return Value{}, 0, err
	}
	return v, s.pos, nil
}

// DecodeAll is Decode for inputs that must hold exactly one value.
func (d Decoder) DecodeAll(data []byte) (Value, error) {
	v, n, err := d.Decode(data)
	if err != nil {
		return Value{}, err
	}
	if n != len(data) {
		return Value{}, &DecodeError{Kind: TrailingDataAfterValue, Offset: n}
	}
	return v, nil
}

type decodeState struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int
	lenient  bool
}

func (s *decodeState) fail(kind ErrorKind, offset int) error {
	return &DecodeError{Kind: kind, Offset: offset}
}

func (s *decodeState) eof() bool {
	return s.pos >= len(s.data)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (s *decodeState) value() (Value, error) {
	if s.eof() {
		return Value{}, s.fail(UnexpectedEndOfInput, len(s.data))
	}
	switch c := s.data[s.pos]; {
	case c == 'i':
		return s.integer()
	case c == 'l':
		return s.list()
	case c == 'd':
		return s.dictionary()
	case isDigit(c):
		return s.byteString()
	}
	return Value{}, s.fail(InvalidValuePrefix, s.pos)
}

func (s *decodeState) integer() (Value, error) {
	start := s.pos
	s.pos++ // 'i'
	signStart := s.pos
	negative := !s.eof() && s.data[s.pos] == '-'
	if negative {
		s.pos++
	}
	digitStart := s.pos
	for !s.eof() && isDigit(s.data[s.pos]) {
		s.pos++
	}
	if s.eof() {
		return Value{}, s.fail(UnexpectedEndOfInput, len(s.data))
	}
	if s.data[s.pos] != 'e' {
		return Value{}, s.fail(InvalidIntegerFormat, s.pos)
	}
	digits := s.data[digitStart:s.pos]
	if len(digits) == 0 {
		return Value{}, s.fail(InvalidIntegerFormat, start)
	}
	// i03e and i-0e are not canonical.
	if digits[0] == '0' && (len(digits) > 1 || negative) {
		return Value{}, s.fail(InvalidIntegerFormat, start)
	}
	n, err := strconv.ParseInt(string(s.data[signStart:s.pos]), 10, 64)
	if err != nil {
		return Value{}, s.fail(InvalidIntegerFormat, start)
	}
	s.pos++ // 'e'
	return NewInteger(n), nil
}

func (s *decodeState) byteString() (Value, error) {
	start := s.pos
	for !s.eof() && isDigit(s.data[s.pos]) {
		s.pos++
	}
	if s.eof() {
		return Value{}, s.fail(UnexpectedEndOfInput, len(s.data))
	}
	if s.data[s.pos] != ':' {
		return Value{}, s.fail(InvalidLengthPrefix, s.pos)
	}
	digits := s.data[start:s.pos]
	if len(digits) > 1 && digits[0] == '0' {
		return Value{}, s.fail(InvalidLengthPrefix, start)
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return Value{}, s.fail(InvalidLengthPrefix, start)
	}
	s.pos++ // ':'
	if n > int64(len(s.data)-s.pos) {
		return Value{}, s.fail(TruncatedByteString, start)
	}
	end := s.pos + int(n)
	b := bytes.Clone(s.data[s.pos:end])
	s.pos = end
	return NewByteString(b), nil
}

func (s *decodeState) enter() error {
	if s.depth >= s.maxDepth {
		return s.fail(MaxNestingDepthExceeded, s.pos)
	}
	s.depth++
	s.pos++ // 'l' or 'd'
	return nil
}

func (s *decodeState) list() (Value, error) {
	if err := s.enter(); err != nil {
		return Value{}, err
	}
	defer func() { s.depth-- }()

	items := []Value{}
	for {
		if s.eof() {
			return Value{}, s.fail(UnterminatedContainer, len(s.data))
		}
		if s.data[s.pos] == 'e' {
			s.pos++
			return NewList(items...), nil
		}
		v, err := s.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

func (s *decodeState) dictionary() (Value, error) {
	if err := s.enter(); err != nil {
		return Value{}, err
	}
	defer func() { s.depth-- }()

	entries := []Entry{}
	var seen map[string]struct{}
	if s.lenient {
		seen = make(map[string]struct{})
	}
	for {
		if s.eof() {
			return Value{}, s.fail(UnterminatedContainer, len(s.data))
		}
		c := s.data[s.pos]
		if c == 'e' {
			s.pos++
			return NewDictionary(entries...), nil
		}
		if !isDigit(c) {
			if c == 'i' || c == 'l' || c == 'd' {
				return Value{}, s.fail(NonByteStringDictionaryKey, s.pos)
			}
			return Value{}, s.fail(InvalidValuePrefix, s.pos)
		}

		keyOffset := s.pos
		k, err := s.byteString()
		if err != nil {
			return Value{}, err
		}
		key := k.bytes
		if s.lenient {
			if _, dup := seen[string(key)]; dup {
				return Value{}, s.fail(UnsortedOrDuplicateDictionaryKeys, keyOffset)
			}
			seen[string(key)] = struct{}{}
		} else if n := len(entries); n > 0 && bytes.Compare(entries[n-1].Key, key) >= 0 {
			return Value{}, s.fail(UnsortedOrDuplicateDictionaryKeys, keyOffset)
		}

		if s.eof() {
			return Value{}, s.fail(UnterminatedContainer, len(s.data))
		}
		v, err := s.value()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: key, Value: v})
	}
}
