package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// DefaultMaxEntrySize bounds a single decompressed log.
const DefaultMaxEntrySize = 64 << 20 // 64MB

// Entry is one file from the archive.
type Entry struct {
	Path    string
	Content []byte
}

// Reader streams entries out of a gzip-compressed tar archive.
type Reader struct {
	gz      *gzip.Reader
	tr      *tar.Reader
	maxSize int64
}

// NewReader starts decompressing r. The caller closes r; Close releases
// only the decompressor.
func NewReader(r io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	return &Reader{
		gz:      gz,
		tr:      tar.NewReader(gz),
		maxSize: DefaultMaxEntrySize,
	}, nil
}

// SetMaxEntrySize overrides DefaultMaxEntrySize.
func (r *Reader) SetMaxEntrySize(n int64) {
	r.maxSize = n
}

// Next returns the next regular file. Directories, links and other
// non-file entries are skipped. Returns io.EOF after the last entry.
func (r *Reader) Next() (Entry, error) {
	for {
		hdr, err := r.tr.Next()
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		if err != nil {
			return Entry{}, fmt.Errorf("read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(r.tr, r.maxSize+1))
		if err != nil {
			return Entry{}, fmt.Errorf("read archive entry %s: %w", hdr.Name, err)
		}
		if n > r.maxSize {
			return Entry{}, fmt.Errorf("read archive entry %s: larger than %d bytes", hdr.Name, r.maxSize)
		}

		return Entry{Path: hdr.Name, Content: buf.Bytes()}, nil
	}
}

// Close releases the decompressor.
func (r *Reader) Close() error {
	return r.gz.Close()
}
