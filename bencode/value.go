package bencode

import (
	"bytes"
	"fmt"
)

// Kind identifies which of the four bencode types a Value holds.
type Kind int

const (
	Invalid Kind = iota
	Integer
	ByteString
	List
	Dictionary
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case ByteString:
		return "byte string"
	case List:
		return "list"
	case Dictionary:
		return "dictionary"
	default:
		return "invalid"
	}
}

// Entry is one key/value pair of a dictionary.
type Entry struct {
	Key   []byte
	Value Value
}

// Value is a decoded bencode value. The zero Value has kind Invalid.
// Values are never modified once built; slices returned by the accessors
// must be treated as read-only.
type Value struct {
	kind    Kind
	integer int64
	bytes   []byte
	list    []Value
	entries []Entry
}

// NewInteger returns an integer Value.
func NewInteger(i int64) Value {
	return Value{kind: Integer, integer: i}
}

// NewByteString returns a byte string Value holding b without copying it.
func NewByteString(b []byte) Value {
	return Value{kind: ByteString, bytes: b}
}

// NewString returns a byte string Value holding the bytes of s.
func NewString(s string) Value {
	return Value{kind: ByteString, bytes: []byte(s)}
}

// NewList returns a list Value holding items in order.
func NewList(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: List, list: items}
}

// NewDictionary keeps entries in the order given.
func NewDictionary(entries ...Entry) Value {
	if entries == nil {
		entries = []Entry{}
	}
	return Value{kind: Dictionary, entries: entries}
}

// Kind returns the type of v, Invalid for the zero Value.
func (v Value) Kind() Kind {
	return v.kind
}

// Int returns the integer held by v and whether v is an integer.
func (v Value) Int() (int64, bool) {
	return v.integer, v.kind == Integer
}

// Bytes returns the raw bytes held by v and whether v is a byte string.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != ByteString {
		return nil, false
	}
	return v.bytes, true
}

// List returns the items of v and whether v is a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != List {
		return nil, false
	}
	return v.list, true
}

// Entries returns the dictionary entries of v in decoded order.
func (v Value) Entries() ([]Entry, bool) {
	if v.kind != Dictionary {
		return nil, false
	}
	return v.entries, true
}

// Lookup returns the value stored under key in a dictionary. Keys are
// compared as raw bytes. When a leniently decoded dictionary carries the
// same key twice the first one wins.
func (v Value) Lookup(key []byte) (Value, bool) {
	if v.kind != Dictionary {
		return Value{}, false
	}
	for _, e := range v.entries {
		if bytes.Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether v and o hold the same tree. Dictionary entries are
// compared in order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Integer:
		return v.integer == o.integer
	case ByteString:
		return bytes.Equal(v.bytes, o.bytes)
	case List:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for i := range v.entries {
			if !bytes.Equal(v.entries[i].Key, o.entries[i].Key) ||
				!v.entries[i].Value.Equal(o.entries[i].Value) {
				return false
			}
		}
		return true
	}
	return true
}

// Interface converts v into the generic tree used by most Go bencode
// packages: int64, string, []interface{} and map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Integer:
		return v.integer
	case ByteString:
		return string(v.bytes)
	case List:
		l := make([]interface{}, len(v.list))
		for i, item := range v.list {
			l[i] = item.Interface()
		}
		return l
	case Dictionary:
		m := make(map[string]interface{}, len(v.entries))
		for _, e := range v.entries {
			if _, ok := m[string(e.Key)]; ok {
				continue
			}
			m[string(e.Key)] = e.Value.Interface()
		}
		return m
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case Integer:
		return fmt.Sprintf("%d", v.integer)
	case ByteString:
		return fmt.Sprintf("%q", v.bytes)
	case List:
		return fmt.Sprintf("%v", v.list)
	case Dictionary:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%q:%v", e.Key, e.Value)
		}
		buf.WriteByte('}')
		return buf.String()
	}
	return "<invalid>"
}
