package server

import (
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// BufferedFile is a file held fully in memory: an uploaded file, a file read
// from disk for serving, or a synthesized text response. Each BufferedFile is
// produced once and consumed once (saved to disk or serialized into a
// response).
type BufferedFile struct {
	Name    string
	Content []byte
}

// ReadBufferedFile loads a file from disk into memory. A missing path or a
// directory yields KindNotFound; a read failure after a successful open is
// KindIO.
func ReadBufferedFile(path string) (*BufferedFile, *AppError) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, NotFoundError("file does not exist: %s", path)
	}
	if info.IsDir() {
		return nil, NotFoundError("path for file is a directory: %s", path)
	}

	name := filepath.Base(path)
	if name == "" || !utf8.ValidString(name) {
		return nil, InvalidError("file name is not valid UTF-8: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, NotFoundError("file failed to open: %s", name)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, IOError("error reading file into buffer: %s", name)
	}

	return &BufferedFile{Name: name, Content: content}, nil
}
