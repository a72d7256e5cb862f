// multipart.go - Bespoke single-part multipart/form-data decoder.
//
// The decoder supports exactly one file part and assumes no embedded
// boundary-like substrings or additional form fields. Multi-field forms are
// out of scope and will mis-parse.
package server

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// BodyExtractor decodes a request body of a particular content type into an
// in-memory file. New body encodings are supported by adding implementations
// and registering them in extractorFor.
type BodyExtractor interface {
	Extract(r *bufio.Reader, contentType string, contentLength int) (*BufferedFile, *AppError)
}

// maxMultipartBytes caps uploads at 50 MiB. The declared Content-Length is
// checked against the cap before any body bytes are read.
const maxMultipartBytes = 50 * 1024 * 1024

// extractorFor selects the extractor for a Content-Type value by prefix
// match. Only multipart/form-data is supported.
func extractorFor(contentType string) (BodyExtractor, bool) {
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return multipartFormExtractor{}, true
	}
	return nil, false
}

type multipartFormExtractor struct{}

// Extract reads exactly contentLength bytes from the stream and decodes them
// as a single-file multipart form. The declared length from the header is
// authoritative; the decoder never reads "until boundary".
func (multipartFormExtractor) Extract(r *bufio.Reader, contentType string, contentLength int) (*BufferedFile, *AppError) {
	if contentLength > maxMultipartBytes {
		return nil, InvalidError("file size exceeds 50MB limit")
	}

	_, boundary, found := strings.Cut(contentType, "boundary=")
	if !found {
		return nil, InvalidError("boundary missing in %s header", HeaderContentType)
	}
	boundary = strings.TrimSpace(boundary)

	raw := make([]byte, contentLength)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, InvalidError("failed to read form data")
	}
	if !utf8.Valid(raw) {
		return nil, InvalidError("failed to parse form data")
	}

	body := strings.TrimSpace(string(raw))
	body, hadPrefix := strings.CutPrefix(body, "--"+boundary)
	body, hadSuffix := strings.CutSuffix(body, "--"+boundary+"--")
	if !hadPrefix || !hadSuffix {
		return nil, InvalidError("form body not surrounded with boundary")
	}
	body = strings.TrimSpace(body)

	// The first line is the Content-Disposition, the second the part's
	// Content-Type (read but discarded), the rest is the file data.
	parts := strings.SplitN(body, "\n", 3)

	filename, aerr := dispositionFilename(parts[0])
	if aerr != nil {
		return nil, aerr
	}
	if len(parts) < 2 {
		return nil, InvalidError("content type missing from form body")
	}
	if len(parts) < 3 {
		return nil, InvalidError("file data missing from form body")
	}

	data := strings.TrimSpace(parts[2])

	return &BufferedFile{Name: filename, Content: []byte(data)}, nil
}

// dispositionFilename pulls the filename out of a Content-Disposition line:
// the piece after the last semicolon, split on "=", with surrounding quotes
// stripped.
func dispositionFilename(line string) (string, *AppError) {
	idx := strings.LastIndex(line, ";")
	if idx < 0 {
		return "", InvalidError("invalid content disposition")
	}

	_, value, found := strings.Cut(line[idx+1:], "=")
	if !found {
		return "", InvalidError("invalid content disposition")
	}

	filename := strings.Trim(strings.TrimSpace(value), `"`)
	if filename == "" {
		return "", InvalidError("invalid content disposition")
	}
	return filename, nil
}
