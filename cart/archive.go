package cart

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bodgit/sevenzip"

	"gbadv/emu/log"
)

var romExts = []string{".gba", ".agb", ".bin", ".mb"}

func isROMName(name string) bool {
	return slices.Contains(romExts, strings.ToLower(filepath.Ext(name)))
}

// extract returns the ROM image contained in data, according to the
// extension of path. Data of files without an archive extension is returned
// as is.
func extract(path string, data []byte) ([]byte, error) {
	var (
		rc  io.ReadCloser
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gz":
		rc, err = gzip.NewReader(bytes.NewReader(data))
	case ".zip":
		rc, err = openZip(data)
	case ".7z":
		rc, err = open7z(data)
	default:
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	log.ModCart.DebugZ("extracting ROM").String("archive", path).End()

	buf, err := io.ReadAll(io.LimitReader(rc, MaxSize+1))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// pickEntry returns the index of the first entry having a ROM extension,
// or of the first regular file.
func pickEntry(n int, name func(int) string, isDir func(int) bool) int {
	first := -1
	for i := range n {
		if isDir(i) {
			continue
		}
		if isROMName(name(i)) {
			return i
		}
		if first == -1 {
			first = i
		}
	}
	return first
}

func openZip(data []byte) (io.ReadCloser, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	idx := pickEntry(len(zr.File),
		func(i int) string { return zr.File[i].Name },
		func(i int) bool { return zr.File[i].FileInfo().IsDir() })
	if idx == -1 {
		return nil, ErrArchive
	}
	return zr.File[idx].Open()
}

func open7z(data []byte) (io.ReadCloser, error) {
	zr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	idx := pickEntry(len(zr.File),
		func(i int) string { return zr.File[i].Name },
		func(i int) bool { return zr.File[i].FileInfo().IsDir() })
	if idx == -1 {
		return nil, ErrArchive
	}
	return zr.File[idx].Open()
}
