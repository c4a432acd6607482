package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/vaguilera/torrentmeta/bencode"
	"github.com/vaguilera/torrentmeta/torrentfile"
)

func printHelp() {
	fmt.Printf("torrentinfo\nUsage:\n\ttorrentinfo [-lenient] [-depth=<N>] <torrentfile>\n")
	flag.PrintDefaults()
}

func printInfo(t *torrentfile.Torrent) {
	log.Printf("Name: %s\n", t.Info.Name)
	log.Printf("Trackers: %v\n", t.Trackers())
	if t.CreationDate != nil {
		log.Printf("Creation Date: %s\n", time.Unix(*t.CreationDate, 0).UTC())
	}
	if t.Comment != nil {
		log.Printf("Comment: %s\n", *t.Comment)
	}
	if t.CreatedBy != nil {
		log.Printf("Created By: %s\n", *t.CreatedBy)
	}
	if t.Info.Private != nil && *t.Info.Private {
		log.Printf("Private: yes\n")
	}
	log.Printf("Pieces: %d x %d bytes\n", t.Info.NumPieces(), t.Info.PieceLength)
	if t.Info.IsMultiFile() {
		for _, s := range t.Info.Spans() {
			log.Printf("  %s (%d bytes)\n", strings.Join(s.Path, "/"), s.Length)
		}
	}
	for _, n := range t.Nodes {
		log.Printf("Node: %s:%d\n", n.Host, n.Port)
	}
	log.Printf("Total length: %d\n", t.Info.TotalLength())
}

func main() {

	log.SetFlags(0)

	lenient := flag.Bool("lenient", false, "Accept dictionary keys in any order")
	depth := flag.Int("depth", bencode.DefaultMaxDepth, "Maximum list/dictionary nesting")
	flag.Parse()
	args := flag.Args()

	if len(args) != 1 {
		printHelp()
		os.Exit(2)
	}

	dec := bencode.Decoder{MaxDepth: *depth, Lenient: *lenient}
	torrent, err := torrentfile.FromFileWith(dec, args[0])
	if err != nil {
		log.Fatalf("Error while opening file: %s", err)
	}

	if _, err := torrent.Info.PieceHashes(); err != nil {
		log.Printf("Warning: %s", err)
	}
	printInfo(torrent)
}
