package server

import (
	"bufio"
	"fmt"
	"strings"
	"testing"
)

func readerFor(raw string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(raw))
}

func TestReadRequestSimpleGet(t *testing.T) {
	raw := "GET /uploads/note.txt HTTP/1.1\r\n" +
		"Host: localhost:7878\r\n" +
		"accept: */*\r\n" +
		"\r\n"

	req, aerr := ReadRequest(readerFor(raw))
	if aerr != nil {
		t.Fatalf("ReadRequest failed: %v", aerr)
	}

	if req.Method != MethodGet {
		t.Errorf("Method = %q, want GET", req.Method)
	}
	if req.Path != "/uploads/note.txt" {
		t.Errorf("Path = %q, want /uploads/note.txt", req.Path)
	}
	if req.Version != "HTTP/1.1" {
		t.Errorf("Version = %q, want HTTP/1.1", req.Version)
	}
	if got := req.Headers["Host"]; got != "localhost:7878" {
		t.Errorf("Host header = %q, want localhost:7878", got)
	}
	// Client casing must not matter for lookups.
	if got := req.Headers["Accept"]; got != "*/*" {
		t.Errorf("Accept header = %q, want */*", got)
	}
	if req.Body.IsMultipart() {
		t.Error("GET request unexpectedly has a body")
	}
}

func TestReadRequestErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind ErrorKind
	}{
		{
			name: "empty stream",
			raw:  "",
			kind: KindIO,
		},
		{
			name: "request line with two tokens",
			raw:  "GET /\r\n\r\n",
			kind: KindInvalid,
		},
		{
			name: "unknown method",
			raw:  "FETCH / HTTP/1.1\r\n\r\n",
			kind: KindInvalid,
		},
		{
			name: "header without colon",
			raw:  "GET / HTTP/1.1\r\nHost localhost\r\n\r\n",
			kind: KindInvalid,
		},
		{
			name: "stream ends mid headers",
			raw:  "GET / HTTP/1.1\r\nHost: localhost\r\n",
			kind: KindIO,
		},
		{
			name: "content length not a number",
			raw:  "POST /upload HTTP/1.1\r\nContent-Length: twelve\r\nContent-Type: multipart/form-data; boundary=X\r\n\r\n",
			kind: KindInvalid,
		},
		{
			name: "content length negative",
			raw:  "POST /upload HTTP/1.1\r\nContent-Length: -5\r\nContent-Type: multipart/form-data; boundary=X\r\n\r\n",
			kind: KindInvalid,
		},
		{
			name: "unsupported content type",
			raw:  "POST /upload HTTP/1.1\r\nContent-Length: 4\r\nContent-Type: application/json\r\n\r\n{}\r\n",
			kind: KindInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, aerr := ReadRequest(readerFor(tt.raw))
			requireKind(t, aerr, tt.kind)
		})
	}
}

// Requests missing either Content-Length or Content-Type have an empty body,
// never an error, regardless of what follows the header block.
func TestReadRequestEmptyBodyContract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "no body headers",
			raw:  "POST /upload HTTP/1.1\r\nHost: localhost\r\n\r\n",
		},
		{
			name: "length without type",
			raw:  "POST /upload HTTP/1.1\r\nContent-Length: 10\r\n\r\n0123456789",
		},
		{
			name: "type without length",
			raw:  "POST /upload HTTP/1.1\r\nContent-Type: multipart/form-data; boundary=X\r\n\r\n",
		},
		{
			name: "zero length",
			raw:  "POST /upload HTTP/1.1\r\nContent-Length: 0\r\nContent-Type: multipart/form-data; boundary=X\r\n\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, aerr := ReadRequest(readerFor(tt.raw))
			if aerr != nil {
				t.Fatalf("ReadRequest failed: %v", aerr)
			}
			if req.Body.IsMultipart() {
				t.Error("expected empty body")
			}
		})
	}
}

func TestReadRequestMultipartUpload(t *testing.T) {
	body := buildMultipartBody("BOUNDARY", "note.txt", "hello world")
	raw := fmt.Sprintf(
		"POST /upload HTTP/1.1\r\nContent-Length: %d\r\nContent-Type: multipart/form-data; boundary=BOUNDARY\r\n\r\n%s",
		len(body), body)

	req, aerr := ReadRequest(readerFor(raw))
	if aerr != nil {
		t.Fatalf("ReadRequest failed: %v", aerr)
	}

	if !req.Body.IsMultipart() {
		t.Fatal("expected a multipart body")
	}
	if req.Body.File.Name != "note.txt" {
		t.Errorf("file name = %q, want note.txt", req.Body.File.Name)
	}
	if string(req.Body.File.Content) != "hello world" {
		t.Errorf("file content = %q, want %q", req.Body.File.Content, "hello world")
	}
}
