// Package cart reads cartridge ROM images, either raw or compressed in an
// archive.
package cart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash"

	"gbadv/emu/log"
)

// MaxSize is the size of the cartridge ROM address window (32MB).
const MaxSize = 32 << 20

const headerSize = 0xC0

var (
	ErrEmpty   = errors.New("empty ROM")
	ErrTooBig  = fmt.Errorf("ROM bigger than %d bytes", MaxSize)
	ErrArchive = errors.New("no ROM found in archive")
)

type ROM struct {
	Header Header
	Data   []byte
}

// Open loads a ROM from file. Files with a .zip, .gz or .7z extension are
// decompressed first.
func Open(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, MaxSize+1))
	if err != nil {
		return nil, err
	}

	buf, err = extract(path, buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rom := new(ROM)
	if err := rom.decode(buf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if log.ModCart.Enabled(log.InfoLevel) {
		log.ModCart.InfoZ("ROM loaded").
			String("path", path).
			String("title", rom.Header.Title).
			Int("size", len(rom.Data)).
			Hex64("fingerprint", rom.Fingerprint()).
			End()
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom. r must provide a raw ROM image.
func (rom *ROM) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return int64(len(buf)), err
	}
	return int64(len(buf)), rom.decode(buf)
}

func (rom *ROM) decode(buf []byte) error {
	switch {
	case len(buf) == 0:
		return ErrEmpty
	case len(buf) > MaxSize:
		return ErrTooBig
	}
	rom.Data = buf
	rom.Header = Header{}
	if len(buf) >= headerSize {
		rom.Header.decode(buf[:headerSize])
	}
	return nil
}

// Fingerprint returns a 64-bit hash of the ROM contents.
func (rom *ROM) Fingerprint() uint64 {
	return xxhash.Sum64(rom.Data)
}

// PrintInfos prints the ROM header and size to w.
func (rom *ROM) PrintInfos(w io.Writer) {
	hdr := &rom.Header
	fmt.Fprintf(w, "Title:       %s\n", hdr.Title)
	fmt.Fprintf(w, "Game code:   %s\n", hdr.GameCode)
	fmt.Fprintf(w, "Maker code:  %s\n", hdr.Maker)
	fmt.Fprintf(w, "Version:     %d\n", hdr.Version)
	ok := "ok"
	if !hdr.ChecksumOK() {
		ok = "mismatch"
	}
	fmt.Fprintf(w, "Checksum:    0x%02X (%s)\n", hdr.Checksum, ok)
	fmt.Fprintf(w, "Size:        %d KB\n", len(rom.Data)/1024)
	fmt.Fprintf(w, "Fingerprint: %016x\n", rom.Fingerprint())
}

// Header is the cartridge header, found at the start of the ROM.
type Header struct {
	Title    string // 12 chars
	GameCode string // 4 chars
	Maker    string // 2 chars
	Version  uint8
	Checksum uint8 // complement check

	computed uint8
	present  bool
}

func headerString(p []byte) string {
	return strings.TrimRight(string(p), "\x00 ")
}

func (hdr *Header) decode(p []byte) {
	hdr.Title = headerString(p[0xA0:0xAC])
	hdr.GameCode = headerString(p[0xAC:0xB0])
	hdr.Maker = headerString(p[0xB0:0xB2])
	hdr.Version = p[0xBC]
	hdr.Checksum = p[0xBD]
	hdr.computed = complementCheck(p)
	hdr.present = true
}

// complementCheck computes the header checksum of bytes 0xA0-0xBC.
func complementCheck(p []byte) uint8 {
	var sum uint8
	for _, b := range p[0xA0:0xBD] {
		sum -= b
	}
	return sum - 0x19
}

// ChecksumOK reports whether the header complement check matches the header
// contents. It is false for ROMs too small to have a header.
func (hdr *Header) ChecksumOK() bool {
	return hdr.present && hdr.computed == hdr.Checksum
}
