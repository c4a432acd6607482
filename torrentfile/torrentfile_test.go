package torrentfile

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	anacrolix "github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"

	"github.com/vaguilera/torrentmeta/bencode"
)

const (
	archFixture  = "testdata/archlinux-2024.01.01-x86_64.iso.torrent"
	filesFixture = "testdata/files.torrent"

	realArchFixture  = "testdata/archlinux-2011.08.19-netinstall-i686.iso.torrent"
	realMultiFixture = "testdata/continuum.torrent"
)

func Test_FromFileArchISO(t *testing.T) {
	torrent, err := FromFile(archFixture)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	expectedName := "archlinux-2024.01.01-x86_64.iso"
	if torrent.Info.Name != expectedName {
		t.Errorf("Expected %s, got %s", expectedName, torrent.Info.Name)
	}
	if (torrent.Announce == nil || *torrent.Announce == "") && len(torrent.AnnounceList) == 0 {
		t.Errorf("Expected announce or announce-list")
	}
	if len(torrent.Info.Pieces)%20 != 0 {
		t.Errorf("Expected pieces to be a multiple of 20, got %d", len(torrent.Info.Pieces))
	}
	hashes, err := torrent.Info.PieceHashes()
	if err != nil {
		t.Fatal(err)
	}
	if len(hashes) != 2304 || torrent.Info.NumPieces() != 2304 {
		t.Errorf("Expected 2304 pieces, got %d", len(hashes))
	}
	if torrent.Info.TotalLength() != 1207959552 {
		t.Errorf("Expected 1207959552 bytes, got %d", torrent.Info.TotalLength())
	}
	if int64(len(hashes))*torrent.Info.PieceLength < torrent.Info.TotalLength() {
		t.Errorf("Pieces do not cover the payload")
	}
	if torrent.Info.IsMultiFile() {
		t.Errorf("Expected single file torrent")
	}
	if *torrent.CreatedBy != "mktorrent 1.1" || *torrent.CreationDate != 1704110593 {
		t.Errorf("Unexpected creator %q / %d", *torrent.CreatedBy, *torrent.CreationDate)
	}
	expectedTrackers := []string{
		"http://tracker.archlinux.org:6969/announce",
		"udp://tracker.opentrackr.org:1337/announce",
	}
	if !reflect.DeepEqual(torrent.Trackers(), expectedTrackers) {
		t.Errorf("Expected %v, got %v", expectedTrackers, torrent.Trackers())
	}
}

// anacrolix/torrent must read the same fixture the same way, and our
// re-encoded info dictionary must be byte-identical to the one on disk.
func Test_fixturesMatchAnacrolix(t *testing.T) {
	for _, name := range []string{archFixture, filesFixture, realArchFixture, realMultiFixture} {
		torrent, err := FromFile(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		mi, err := metainfo.LoadFromFile(name)
		if err != nil {
			t.Fatalf("%s: anacrolix: %v", name, err)
		}
		info, err := mi.UnmarshalInfo()
		if err != nil {
			t.Fatal(err)
		}

		if info.Name != torrent.Info.Name {
			t.Errorf("%s: Expected name %s, got %s", name, info.Name, torrent.Info.Name)
		}
		if info.PieceLength != torrent.Info.PieceLength {
			t.Errorf("%s: Expected piece length %d, got %d", name, info.PieceLength, torrent.Info.PieceLength)
		}
		if !bytes.Equal(info.Pieces, torrent.Info.Pieces) {
			t.Errorf("%s: pieces differ", name)
		}
		if info.TotalLength() != torrent.Info.TotalLength() {
			t.Errorf("%s: Expected length %d, got %d", name, info.TotalLength(), torrent.Info.TotalLength())
		}
		if mi.Announce != *torrent.Announce {
			t.Errorf("%s: Expected announce %s, got %s", name, mi.Announce, *torrent.Announce)
		}
		if len(mi.AnnounceList) > 0 && !reflect.DeepEqual([][]string(mi.AnnounceList), torrent.AnnounceList) {
			t.Errorf("%s: Expected announce-list %v, got %v", name, mi.AnnounceList, torrent.AnnounceList)
		}

		raw, err := bencode.EncodeToBytes(torrent.RawInfo)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(raw, mi.InfoBytes) {
			t.Errorf("%s: re-encoded info differs from the original bytes", name)
		}
		if sha1.Sum(raw) != [20]byte(mi.HashInfoBytes()) {
			t.Errorf("%s: info hash mismatch", name)
		}
	}
}

func Test_decodeMatchesAnacrolixBencode(t *testing.T) {
	for _, name := range []string{archFixture, filesFixture, realArchFixture, realMultiFixture} {
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		v, err := bencode.Decode(data)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		ours, err := bencode.EncodeToBytes(v)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(ours, data) {
			t.Errorf("%s: re-encoding changed the file", name)
		}

		var generic interface{}
		if err := anacrolix.Unmarshal(data, &generic); err != nil {
			t.Fatalf("%s: anacrolix: %v", name, err)
		}
		theirs, err := anacrolix.Marshal(generic)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(ours, theirs) {
			t.Errorf("%s: anacrolix tree differs from ours", name)
		}
	}
}

func Test_FromFileMultiFile(t *testing.T) {
	torrent, err := FromFile(filesFixture)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !torrent.Info.IsMultiFile() {
		t.Fatalf("Expected multi file torrent")
	}
	files := torrent.Info.Files()
	if len(files) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(files))
	}
	if !reflect.DeepEqual(files[2].Path, []string{"sub", "file3"}) {
		t.Errorf("Expected sub/file3, got %v", files[2].Path)
	}
	if files[1].MD5Sum == nil || *files[1].MD5Sum != "0123456789abcdef0123456789abcdef" {
		t.Errorf("Expected md5sum on second file")
	}
	if torrent.Info.Private == nil || !*torrent.Info.Private {
		t.Errorf("Expected private torrent")
	}
	expectedNodes := []Node{{"router.bittorrent.com", 6881}, {"dht.example.org", 6882}}
	if !reflect.DeepEqual(torrent.Nodes, expectedNodes) {
		t.Errorf("Expected %v, got %v", expectedNodes, torrent.Nodes)
	}
	if !reflect.DeepEqual(torrent.HTTPSeeds, []string{"http://seed.example.org/seed"}) {
		t.Errorf("Unexpected httpseeds %v", torrent.HTTPSeeds)
	}
	if *torrent.Encoding != "UTF-8" {
		t.Errorf("Expected UTF-8, got %s", *torrent.Encoding)
	}
	if torrent.AnnounceList != nil {
		t.Errorf("Expected no announce-list, got %v", torrent.AnnounceList)
	}
	if !reflect.DeepEqual(torrent.Trackers(), []string{"http://tracker.example.org/announce"}) {
		t.Errorf("Unexpected trackers %v", torrent.Trackers())
	}
	if torrent.Info.NumPieces() != 3 {
		t.Errorf("Expected 3 pieces, got %d", torrent.Info.NumPieces())
	}
}

func Test_spans(t *testing.T) {
	torrent, err := FromFile(filesFixture)
	if err != nil {
		t.Fatal(err)
	}
	spans := torrent.Info.Spans()
	expected := []Span{
		{Path: []string{"files", "file1"}, Offset: 0, Length: 16384},
		{Path: []string{"files", "sub", "file2"}, Offset: 16384, Length: 20000},
		{Path: []string{"files", "sub", "file3"}, Offset: 36384, Length: 1000},
	}
	if !reflect.DeepEqual(spans, expected) {
		t.Errorf("Expected %v, got %v", expected, spans)
	}
	last := spans[len(spans)-1]
	if last.Offset+last.Length != torrent.Info.TotalLength() {
		t.Errorf("Spans do not add up to %d", torrent.Info.TotalLength())
	}
	if p, err := spans[1].FilePath("download"); err != nil || p != filepath.Join("download", "files", "sub", "file2") {
		t.Errorf("Unexpected file path %s (%v)", p, err)
	}

	single := Info{Name: "a.iso", Layout: SingleFile{Length: 12}}
	if s := single.Spans(); len(s) != 1 || s[0].Path[0] != "a.iso" || s[0].Length != 12 {
		t.Errorf("Unexpected single file spans %v", s)
	}
}

func Test_spanFilePathStaysUnderRoot(t *testing.T) {
	cases := [][]string{
		{"x", "..", "..", "etc", "passwd"},
		{".."},
		{"x", "."},
		{"x", ""},
		{"/etc", "passwd"},
		{"x", "a/../../b"},
		{},
	}
	for _, path := range cases {
		p, err := Span{Path: path}.FilePath("/srv/download")
		if !errors.Is(err, ErrUnsafePath) {
			t.Errorf("%q: Expected ErrUnsafePath, got %q (%v)", path, p, err)
		}
	}
}

// Files must not hand out the Torrent's own slice.
func Test_filesReturnsCopy(t *testing.T) {
	torrent, err := FromFile(filesFixture)
	if err != nil {
		t.Fatal(err)
	}
	files := torrent.Info.Files()
	files[0] = File{Path: []string{"changed"}, Length: 99}
	_ = append(files[:1], File{Path: []string{"extra"}})

	again := torrent.Info.Files()
	if again[0].Path[0] != "file1" || again[0].Length != 16384 || again[1].Path[1] != "file2" {
		t.Errorf("Expected Torrent files to be unchanged, got %v", again)
	}
	if torrent.Info.TotalLength() != 37384 {
		t.Errorf("Expected 37384, got %d", torrent.Info.TotalLength())
	}
}

// Real-world torrents shipped with anacrolix/torrent.
func Test_realWorldFixtures(t *testing.T) {
	cases := []struct {
		file      string
		name      string
		pieces    int
		length    int64
		multiFile bool
		trackers  int
	}{
		{"testdata/archlinux-2011.08.19-netinstall-i686.iso.torrent", "archlinux-2011.08.19-netinstall-i686.iso", 362, 189792256, false, 1},
		{"testdata/continuum.torrent", "Continuum.S01.720p.WEB-DL.Rus.Eng.HDCLUB", 1526, 6397469459, true, 2},
	}
	for _, c := range cases {
		torrent, err := FromFile(c.file)
		if err != nil {
			t.Errorf("%s: unexpected error %v", c.file, err)
			continue
		}
		if torrent.Info.Name != c.name {
			t.Errorf("%s: Expected %s, got %s", c.file, c.name, torrent.Info.Name)
		}
		if len(torrent.Info.Pieces)%20 != 0 {
			t.Errorf("%s: Expected pieces to be a multiple of 20, got %d", c.file, len(torrent.Info.Pieces))
		}
		hashes, err := torrent.Info.PieceHashes()
		if err != nil || len(hashes) != c.pieces {
			t.Errorf("%s: Expected %d pieces, got %d (%v)", c.file, c.pieces, len(hashes), err)
		}
		if torrent.Info.TotalLength() != c.length {
			t.Errorf("%s: Expected %d bytes, got %d", c.file, c.length, torrent.Info.TotalLength())
		}
		// the last piece may be short but never empty
		covered := int64(c.pieces) * torrent.Info.PieceLength
		if covered < c.length || covered-c.length >= torrent.Info.PieceLength {
			t.Errorf("%s: %d pieces of %d do not fit %d bytes", c.file, c.pieces, torrent.Info.PieceLength, c.length)
		}
		if torrent.Info.IsMultiFile() != c.multiFile {
			t.Errorf("%s: Expected multi file %v", c.file, c.multiFile)
		}
		if len(torrent.Trackers()) != c.trackers {
			t.Errorf("%s: Expected %d trackers, got %v", c.file, c.trackers, torrent.Trackers())
		}
		for _, s := range torrent.Info.Spans() {
			if _, err := s.FilePath("download"); err != nil {
				t.Errorf("%s: %v for %v", c.file, err, s.Path)
			}
		}
	}
}

func Test_FromFileMissing(t *testing.T) {
	_, err := FromFile("testdata/does-not-exist.torrent")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func Test_FromFileKeepsErrorTypes(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "bad.torrent")
	if err := os.WriteFile(name, []byte("d4:infoi1ee"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := FromFile(name)
	var me *MapError
	if !errors.As(err, &me) || me.Kind != UnexpectedType || me.Field != "info" {
		t.Errorf("Expected MapError on info, got %v", err)
	}
}

func Test_parseErrors(t *testing.T) {
	if _, err := Parse([]byte("d4:info")); !errors.Is(err, bencode.ErrUnterminatedContainer) {
		t.Errorf("Expected unterminated container error, got %v", err)
	}

	data, err := os.ReadFile(filesFixture)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(append(data, 'x')); !errors.Is(err, bencode.ErrTrailingDataAfterValue) {
		t.Errorf("Expected trailing data error, got %v", err)
	}

	unsorted := []byte("d8:announce1:a4:infod4:name1:a12:piece lengthi1e6:pieces0:6:lengthi1eee")
	if _, err := Parse(unsorted); !errors.Is(err, bencode.ErrUnsortedOrDuplicateKeys) {
		t.Errorf("Expected unsorted key error, got %v", err)
	}
	torrent, err := ParseWith(bencode.Decoder{Lenient: true}, unsorted)
	if err != nil {
		t.Fatalf("Expected lenient parse to succeed, got %v", err)
	}
	if torrent.Info.TotalLength() != 1 {
		t.Errorf("Expected length 1, got %d", torrent.Info.TotalLength())
	}
}

func Test_pieceHashesMisaligned(t *testing.T) {
	info := Info{Pieces: make([]byte, 21)}
	if _, err := info.PieceHashes(); !errors.Is(err, ErrPiecesMisaligned) {
		t.Errorf("Expected ErrPiecesMisaligned, got %v", err)
	}
	if info.NumPieces() != 1 {
		t.Errorf("Expected 1 whole piece, got %d", info.NumPieces())
	}

	info.Pieces = append(bytes.Repeat([]byte{1}, 20), bytes.Repeat([]byte{2}, 20)...)
	hashes, err := info.PieceHashes()
	if err != nil {
		t.Fatal(err)
	}
	if hashes[1][0] != 2 || hashes[0][19] != 1 {
		t.Errorf("Unexpected hashes %x", hashes)
	}
}
