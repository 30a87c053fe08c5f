package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// ErrEmptyArchive is returned when an archive holds no files.
var ErrEmptyArchive = errors.New("utils: empty archive")

// decompressors maps a file extension to a function that unwraps the
// data in it. Archives yield their first file.
var decompressors = map[string]func(data []byte) (io.Reader, error){
	".gz": func(data []byte) (io.Reader, error) {
		return gzip.NewReader(bytes.NewReader(data))
	},
	".xz": func(data []byte) (io.Reader, error) {
		return xz.NewReader(bytes.NewReader(data))
	},
	".zst": func(data []byte) (io.Reader, error) {
		d, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	},
	".lz4": func(data []byte) (io.Reader, error) {
		return lz4.NewReader(bytes.NewReader(data)), nil
	},
	".br": func(data []byte) (io.Reader, error) {
		return brotli.NewReader(bytes.NewReader(data)), nil
	},
	".zip": func(data []byte) (io.Reader, error) {
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(r.File) == 0 {
			return nil, ErrEmptyArchive
		}
		return r.File[0].Open()
	},
	".7z": func(data []byte) (io.Reader, error) {
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(r.File) == 0 {
			return nil, ErrEmptyArchive
		}
		return r.File[0].Open()
	},
}

// LoadFile loads the given file and performs decompression if its
// extension names a known compression or archive format. Anything else
// is returned as is.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	data, err = Decompress(filepath.Ext(filename), data)
	if err != nil {
		return nil, fmt.Errorf("utils: loading %s: %w", filename, err)
	}
	return data, nil
}

// Decompress unwraps data according to the file extension ext.
func Decompress(ext string, data []byte) ([]byte, error) {
	decompress, ok := decompressors[strings.ToLower(ext)]
	if !ok {
		return data, nil
	}

	r, err := decompress(data)
	if err != nil {
		return nil, err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	return io.ReadAll(r)
}

// Checksum returns the xxhash of data, used to identify program images.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
