// Package dbfile opens a database file and reads its header. Plain files are
// read in place; xz-compressed snapshots are decompressed into memory first.
package dbfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/logging"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/page"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

var (
	osOpen      = os.Open
	xzNewReader = xz.NewReader
)

// File is an open database. It owns the underlying handle, if any.
type File struct {
	Header

	path       string
	src        io.ReaderAt
	size       int64
	closer     io.Closer
	compressed bool
	pages      *page.Reader
}

// Open opens the database at path.
func Open(path string) (*File, error) {
	dbfile, err := osOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open file db: %s err: %w", path, err)
	}

	head := make([]byte, len(xzMagic))
	n, err := dbfile.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		dbfile.Close()
		return nil, fmt.Errorf("read file db: %s err: %w", path, err)
	}

	if n == len(xzMagic) && bytes.Equal(head, xzMagic) {
		defer dbfile.Close()
		data, err := decompress(dbfile)
		if err != nil {
			return nil, fmt.Errorf("decompress %s err: %w", path, err)
		}
		f, err := New(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		f.path = path
		f.compressed = true
		return f, nil
	}

	info, err := dbfile.Stat()
	if err != nil {
		dbfile.Close()
		return nil, fmt.Errorf("stat file db: %s err: %w", path, err)
	}
	f, err := New(dbfile, info.Size())
	if err != nil {
		dbfile.Close()
		return nil, err
	}
	f.path = path
	f.closer = dbfile
	return f, nil
}

func decompress(r io.Reader) ([]byte, error) {
	xzReader, err := xzNewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	data, err := io.ReadAll(xzReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read xz stream: %w", err)
	}
	return data, nil
}

// New reads the header from src and returns a File serving pages from it.
// The caller keeps ownership of src.
func New(src io.ReaderAt, size int64) (*File, error) {
	rawheader := make([]byte, HeaderSize)
	if n, err := src.ReadAt(rawheader, 0); n < HeaderSize {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file has %d bytes, shorter than the database header", dberr.ErrTruncatedInput, n)
		}
		return nil, fmt.Errorf("read header got err: %w", err)
	}

	header, err := ParseHeader(rawheader)
	if err != nil {
		return nil, err
	}
	if header.TextEncoding != EncodingUTF8 {
		logging.Warn("text_encoding",
			"encoding", header.EncodingName(),
			"note", "text values are returned as stored bytes",
		)
	}

	return &File{
		Header: header,
		src:    src,
		size:   size,
		pages:  page.NewReader(src, header.PageSize(), header.UsableSize()),
	}, nil
}

// Pages returns the page reader for this file.
func (f *File) Pages() *page.Reader {
	return f.pages
}

// Path is the file name given to Open, empty for files built with New.
func (f *File) Path() string {
	return f.path
}

// Size is the byte length of the (decompressed) database.
func (f *File) Size() int64 {
	return f.size
}

// Compressed reports whether the file was an xz snapshot.
func (f *File) Compressed() bool {
	return f.compressed
}

// ReadAt reads raw bytes from the database image.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.src.ReadAt(p, off)
}

func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}
