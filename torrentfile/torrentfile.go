package torrentfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vaguilera/torrentmeta/bencode"
)

const hashLen = 20

// Parse decodes data strictly and maps it. Decode failures come back as
// *bencode.DecodeError, schema failures as *MapError.
func Parse(data []byte) (*Torrent, error) {
	return ParseWith(bencode.Decoder{}, data)
}

// ParseWith is Parse with caller-chosen decoder options.
func ParseWith(dec bencode.Decoder, data []byte) (*Torrent, error) {
	v, err := dec.DecodeAll(data)
	if err != nil {
		return nil, err
	}
	return Map(v)
}

// FromFile reads and parses a .torrent file.
func FromFile(fileName string) (*Torrent, error) {
	return FromFileWith(bencode.Decoder{}, fileName)
}

// FromFileWith is FromFile with caller-chosen decoder options.
func FromFileWith(dec bencode.Decoder, fileName string) (*Torrent, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading torrent file: %w", err)
	}
	t, err := ParseWith(dec, data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	return t, nil
}

// PieceHashes splits Pieces into one SHA-1 hash per piece.
func (info *Info) PieceHashes() ([][20]byte, error) {
	if len(info.Pieces)%hashLen != 0 {
		return nil, ErrPiecesMisaligned
	}
	hashes := make([][20]byte, len(info.Pieces)/hashLen)
	for i := range hashes {
		copy(hashes[i][:], info.Pieces[i*hashLen:(i+1)*hashLen])
	}
	return hashes, nil
}

// NumPieces counts whole hashes in Pieces.
func (info *Info) NumPieces() int {
	return len(info.Pieces) / hashLen
}

// IsMultiFile reports whether the torrent carries a files list.
func (info *Info) IsMultiFile() bool {
	_, ok := info.Layout.(MultiFile)
	return ok
}

// Files lists the payload files. A single-file torrent yields one File
// named after the torrent. The slice is a copy; Path slices are shared and
// must be treated as read-only.
func (info *Info) Files() []File {
	switch l := info.Layout.(type) {
	case SingleFile:
		return []File{{Path: []string{info.Name}, Length: l.Length, MD5Sum: l.MD5Sum}}
	case MultiFile:
		return append([]File(nil), l.Files...)
	}
	return nil
}

// TotalLength is the size of the whole payload.
func (info *Info) TotalLength() int64 {
	var total int64
	for _, f := range info.Files() {
		total += f.Length
	}
	return total
}

// Spans places every file in the concatenated payload the pieces are
// computed over. Multi-file paths are prefixed with the torrent name, which
// is the directory they live in.
func (info *Info) Spans() []Span {
	files := info.Files()
	spans := make([]Span, 0, len(files))
	var offset int64
	for _, f := range files {
		path := f.Path
		if info.IsMultiFile() {
			path = append([]string{info.Name}, f.Path...)
		}
		spans = append(spans, Span{Path: path, Offset: offset, Length: f.Length})
		offset += f.Length
	}
	return spans
}

// FilePath joins the span's path segments under root. Paths that would
// leave root yield ErrUnsafePath.
func (s Span) FilePath(root string) (string, error) {
	if len(s.Path) == 0 {
		return "", ErrUnsafePath
	}
	for _, seg := range s.Path {
		if !safeSegment(seg) {
			return "", ErrUnsafePath
		}
	}
	rel := filepath.Join(s.Path...)
	if !filepath.IsLocal(rel) {
		return "", ErrUnsafePath
	}
	return filepath.Join(root, rel), nil
}

// Trackers flattens announce-list tiers in priority order, followed by
// announce if no tier already names it. Duplicates are dropped.
func (t *Torrent) Trackers() []string {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}
	for _, tier := range t.AnnounceList {
		for _, u := range tier {
			add(u)
		}
	}
	if t.Announce != nil {
		add(*t.Announce)
	}
	return urls
}
