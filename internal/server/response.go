// response.go - Response construction and wire serialization.
//
// A Response carries a description of its body, not the bytes: File bodies
// are read from disk only at serialization time, so a handler can describe a
// file without touching the filesystem.
package server

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

type responseBodyKind int

const (
	bodyEmpty responseBodyKind = iota
	bodyFile
	bodyText
)

// ResponseBody describes how to obtain the body bytes of a response.
type ResponseBody struct {
	kind responseBodyKind
	path string
	text string
}

// FileBody describes a body served from a file on disk.
func FileBody(path string) ResponseBody { return ResponseBody{kind: bodyFile, path: path} }

// TextBody describes a synthesized HTML body.
func TextBody(text string) ResponseBody { return ResponseBody{kind: bodyText, text: text} }

// EmptyBody describes a response with no body.
func EmptyBody() ResponseBody { return ResponseBody{kind: bodyEmpty} }

// resolve materializes the body as an in-memory file, or nil when the
// response has no body. A File body that does not resolve to a readable file
// fails with KindNotFound.
func (b ResponseBody) resolve() (*BufferedFile, *AppError) {
	switch b.kind {
	case bodyFile:
		return ReadBufferedFile(b.path)
	case bodyText:
		return &BufferedFile{Name: "response.html", Content: []byte(b.text)}, nil
	default:
		return nil, nil
	}
}

// Response is one HTTP response about to be serialized.
type Response struct {
	Version string
	Status  Status
	Headers map[string]string
	Body    ResponseBody
}

// ResponseBuilder accumulates the parts of a Response. The zero status is
// 200 OK and the zero body is empty.
type ResponseBuilder struct {
	status  Status
	headers map[string]string
	body    ResponseBody
}

// NewResponse starts a builder with default status and body.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		status:  StatusOK,
		headers: make(map[string]string),
		body:    EmptyBody(),
	}
}

// Status sets the response status.
func (b *ResponseBuilder) Status(s Status) *ResponseBuilder {
	b.status = s
	return b
}

// Header sets a single response header.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the response body description.
func (b *ResponseBuilder) Body(body ResponseBody) *ResponseBuilder {
	b.body = body
	return b
}

// Build assembles the Response. The version is always HTTP/1.1.
func (b *ResponseBuilder) Build() *Response {
	return &Response{
		Version: "HTTP/1.1",
		Status:  b.status,
		Headers: b.headers,
		Body:    b.body,
	}
}

// Bytes serializes the response into its exact wire form: status line,
// headers, blank line, body. Content-Length and Content-Type are computed
// from the resolved body and override any caller-supplied value; non-HTML
// bodies additionally get an inline Content-Disposition.
func (resp *Response) Bytes() ([]byte, *AppError) {
	file, aerr := resp.Body.resolve()
	if aerr != nil {
		return nil, aerr
	}

	headers := make(map[string]string, len(resp.Headers)+3)
	for name, value := range resp.Headers {
		headers[name] = value
	}

	var body []byte
	if file != nil {
		contentType := ContentTypeFor(file.Name)
		headers[HeaderContentLength] = strconv.Itoa(len(file.Content))
		headers[HeaderContentType] = contentType
		if !strings.HasPrefix(contentType, "text/html") {
			headers[HeaderContentDisposition] = fmt.Sprintf("inline; filename=%q", file.Name)
		}
		body = file.Content
	} else {
		headers[HeaderContentLength] = "0"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %d %s\r\n", resp.Version, resp.Status, resp.Status.ReasonPhrase())
	for name, value := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", name, value)
	}
	buf.WriteString("\r\n")
	buf.Write(body)

	return buf.Bytes(), nil
}

// ContentTypeFor maps a file name's extension to its Content-Type. Unknown
// extensions are served as opaque binary.
func ContentTypeFor(name string) string {
	switch strings.TrimPrefix(filepath.Ext(name), ".") {
	case "html":
		return "text/html; charset=UTF-8"
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "pdf":
		return "application/pdf"
	case "json":
		return "application/json"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
