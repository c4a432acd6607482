package torrentfile

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/vaguilera/torrentmeta/bencode"
)

// Map projects a decoded metainfo tree onto Torrent. Every recognised key
// is looked up by its exact on-wire spelling; unknown keys are ignored.
// Either the whole Torrent is returned or a *MapError and nil.
func Map(v bencode.Value) (*Torrent, error) {
	if v.Kind() != bencode.Dictionary {
		return nil, &MapError{Kind: RootNotADictionary, Actual: v.Kind()}
	}

	rawInfo, ok := v.Lookup([]byte("info"))
	if !ok {
		return nil, &MapError{Kind: MissingRequiredField, Field: "info"}
	}
	info, err := mapInfo(rawInfo, "info")
	if err != nil {
		return nil, err
	}

	t := &Torrent{Info: info, RawInfo: rawInfo}
	if t.Announce, err = optionalString(v, "", "announce"); err != nil {
		return nil, err
	}
	if t.AnnounceList, err = optionalAnnounceList(v, "announce-list"); err != nil {
		return nil, err
	}
	if t.Nodes, err = optionalNodes(v, "nodes"); err != nil {
		return nil, err
	}
	if t.CreationDate, err = optionalInt(v, "", "creation date"); err != nil {
		return nil, err
	}
	if t.Comment, err = optionalString(v, "", "comment"); err != nil {
		return nil, err
	}
	if t.CreatedBy, err = optionalString(v, "", "created by"); err != nil {
		return nil, err
	}
	if t.Encoding, err = optionalString(v, "", "encoding"); err != nil {
		return nil, err
	}
	if t.HTTPSeeds, err = optionalStringList(v, "", "httpseeds"); err != nil {
		return nil, err
	}
	return t, nil
}

func mapInfo(v bencode.Value, name string) (Info, error) {
	var info Info
	if err := expect(v, name, bencode.Dictionary); err != nil {
		return info, err
	}

	var err error
	if info.Name, err = requiredString(v, name, "name"); err != nil {
		return info, err
	}
	if !safeSegment(info.Name) {
		return info, &MapError{Kind: InvalidValue, Field: field(name, "name")}
	}
	if info.PieceLength, err = requiredInt(v, name, "piece length"); err != nil {
		return info, err
	}
	if info.PieceLength <= 0 {
		return info, &MapError{Kind: InvalidValue, Field: field(name, "piece length")}
	}
	if info.Pieces, err = requiredBytes(v, name, "pieces"); err != nil {
		return info, err
	}

	private, err := optionalInt(v, name, "private")
	if err != nil {
		return info, err
	}
	if private != nil {
		if *private != 0 && *private != 1 {
			return info, &MapError{Kind: InvalidValue, Field: field(name, "private")}
		}
		p := *private == 1
		info.Private = &p
	}

	if info.RootHash, err = optionalString(v, name, "root hash"); err != nil {
		return info, err
	}
	if info.Path, err = optionalStringList(v, name, "path"); err != nil {
		return info, err
	}

	md5sum, err := optionalString(v, name, "md5sum")
	if err != nil {
		return info, err
	}
	length, err := optionalInt(v, name, "length")
	if err != nil {
		return info, err
	}
	if length != nil && *length < 0 {
		return info, &MapError{Kind: InvalidValue, Field: field(name, "length")}
	}
	files, err := optionalFiles(v, name)
	if err != nil {
		return info, err
	}

	switch {
	case length != nil && files != nil:
		return info, &MapError{Kind: ConflictingLayout, Field: name}
	case length != nil:
		info.Layout = SingleFile{Length: *length, MD5Sum: md5sum}
	case files != nil:
		info.Layout = MultiFile{Files: files}
	default:
		return info, &MapError{Kind: MissingLayout, Field: name}
	}
	return info, nil
}

func optionalFiles(d bencode.Value, parent string) ([]File, error) {
	name := field(parent, "files")
	v, ok := d.Lookup([]byte("files"))
	if !ok {
		return nil, nil
	}
	items, ok := v.List()
	if !ok {
		return nil, typeError(name, bencode.List, v)
	}
	files := make([]File, 0, len(items))
	for i, item := range items {
		fname := index(name, i)
		if err := expect(item, fname, bencode.Dictionary); err != nil {
			return nil, err
		}
		var f File
		var err error
		if f.Path, err = requiredStringList(item, fname, "path"); err != nil {
			return nil, err
		}
		if len(f.Path) == 0 {
			return nil, &MapError{Kind: InvalidValue, Field: field(fname, "path")}
		}
		for j, seg := range f.Path {
			if !safeSegment(seg) {
				return nil, &MapError{Kind: InvalidValue, Field: index(field(fname, "path"), j)}
			}
		}
		if f.Length, err = requiredInt(item, fname, "length"); err != nil {
			return nil, err
		}
		if f.Length < 0 {
			return nil, &MapError{Kind: InvalidValue, Field: field(fname, "length")}
		}
		if f.MD5Sum, err = optionalString(item, fname, "md5sum"); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func optionalAnnounceList(d bencode.Value, key string) ([][]string, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return nil, nil
	}
	tiers, ok := v.List()
	if !ok {
		return nil, typeError(key, bencode.List, v)
	}
	list := make([][]string, 0, len(tiers))
	for i, tier := range tiers {
		urls, err := asStringList(tier, index(key, i))
		if err != nil {
			return nil, err
		}
		list = append(list, urls)
	}
	return list, nil
}

func optionalNodes(d bencode.Value, key string) ([]Node, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return nil, nil
	}
	items, ok := v.List()
	if !ok {
		return nil, typeError(key, bencode.List, v)
	}
	nodes := make([]Node, 0, len(items))
	for i, item := range items {
		name := index(key, i)
		pair, ok := item.List()
		if !ok {
			return nil, typeError(name, bencode.List, item)
		}
		if len(pair) != 2 {
			return nil, &MapError{Kind: InvalidValue, Field: name}
		}
		host, err := asString(pair[0], index(name, 0))
		if err != nil {
			return nil, err
		}
		port, err := asInt(pair[1], index(name, 1))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, Node{Host: host, Port: port})
	}
	return nodes, nil
}

// safeSegment accepts a single relative path element: no separators, no
// volume name, not empty, "." or "..".
func safeSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, "/\\\x00") || filepath.VolumeName(s) != "" {
		return false
	}
	return filepath.IsLocal(s)
}

func field(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func index(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

func typeError(name string, expected bencode.Kind, v bencode.Value) error {
	return &MapError{Kind: UnexpectedType, Field: name, Expected: expected, Actual: v.Kind()}
}

func expect(v bencode.Value, name string, kind bencode.Kind) error {
	if v.Kind() != kind {
		return typeError(name, kind, v)
	}
	return nil
}

func asInt(v bencode.Value, name string) (int64, error) {
	n, ok := v.Int()
	if !ok {
		return 0, typeError(name, bencode.Integer, v)
	}
	return n, nil
}

func asString(v bencode.Value, name string) (string, error) {
	b, ok := v.Bytes()
	if !ok {
		return "", typeError(name, bencode.ByteString, v)
	}
	if !utf8.Valid(b) {
		return "", &MapError{Kind: InvalidTextEncoding, Field: name}
	}
	return string(b), nil
}

func asStringList(v bencode.Value, name string) ([]string, error) {
	items, ok := v.List()
	if !ok {
		return nil, typeError(name, bencode.List, v)
	}
	list := make([]string, 0, len(items))
	for i, item := range items {
		s, err := asString(item, index(name, i))
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}

func missing(parent, key string) error {
	return &MapError{Kind: MissingRequiredField, Field: field(parent, key)}
}

func requiredInt(d bencode.Value, parent, key string) (int64, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return 0, missing(parent, key)
	}
	return asInt(v, field(parent, key))
}

func requiredString(d bencode.Value, parent, key string) (string, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return "", missing(parent, key)
	}
	return asString(v, field(parent, key))
}

// requiredBytes keeps the value as raw bytes; no text validation.
func requiredBytes(d bencode.Value, parent, key string) ([]byte, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return nil, missing(parent, key)
	}
	b, ok := v.Bytes()
	if !ok {
		return nil, typeError(field(parent, key), bencode.ByteString, v)
	}
	return b, nil
}

func requiredStringList(d bencode.Value, parent, key string) ([]string, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return nil, missing(parent, key)
	}
	return asStringList(v, field(parent, key))
}

func optionalInt(d bencode.Value, parent, key string) (*int64, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return nil, nil
	}
	n, err := asInt(v, field(parent, key))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optionalString(d bencode.Value, parent, key string) (*string, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return nil, nil
	}
	s, err := asString(v, field(parent, key))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func optionalStringList(d bencode.Value, parent, key string) ([]string, error) {
	v, ok := d.Lookup([]byte(key))
	if !ok {
		return nil, nil
	}
	return asStringList(v, field(parent, key))
}
