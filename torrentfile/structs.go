package torrentfile

import "github.com/vaguilera/torrentmeta/bencode"

// File is one entry of a multi-file torrent.
type File struct {
	Path   []string
	Length int64
	MD5Sum *string
}

// Node is a DHT bootstrap contact.
type Node struct {
	Host string
	Port int64
}

// Layout is either SingleFile or MultiFile.
type Layout interface {
	isLayout()
}

// SingleFile is the layout of a torrent holding one file named Info.Name.
type SingleFile struct {
	Length int64
	MD5Sum *string
}

// MultiFile is the layout of a torrent holding a directory named Info.Name.
type MultiFile struct {
	Files []File
}

func (SingleFile) isLayout() {}
func (MultiFile) isLayout()  {}

// Info is the mapped "info" dictionary.
type Info struct {
	Name        string
	PieceLength int64
	Pieces      []byte // concatenated 20-byte SHA-1 hashes
	Private     *bool
	RootHash    *string
	Path        []string
	Layout      Layout
}

// Torrent is a mapped metainfo document. Optional fields are nil when the
// key is absent.
type Torrent struct {
	Info         Info
	Announce     *string
	AnnounceList [][]string
	Nodes        []Node
	CreationDate *int64
	Comment      *string
	CreatedBy    *string
	Encoding     *string
	HTTPSeeds    []string

	// RawInfo is the undecoded "info" dictionary, kept for anyone who needs
	// to re-encode it (the info-hash is SHA-1 over its canonical bytes).
	RawInfo bencode.Value
}

// Span locates one file inside the concatenated piece data.
type Span struct {
	Path   []string
	Offset int64
	Length int64
}
