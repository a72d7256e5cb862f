// request.go - HTTP/1.1 request parsing from a raw byte stream.
//
// Parsing is all-or-nothing: a Request is returned only when the request
// line, every header, and the body (if declared) were read successfully.
package server

import (
	"bufio"
	"strconv"
	"strings"
)

// Request is one parsed HTTP request. It is owned exclusively by the worker
// processing the connection and dropped when the handler returns.
type Request struct {
	Method  Method
	Path    string
	Version string
	// Headers keys are canonicalized to Header-Case, so lookups through the
	// exported constants are case-insensitive with respect to client casing.
	Headers map[string]string
	Body    RequestBody
}

// RequestBody is the decoded body of a request. File is non-nil only for a
// multipart/form-data upload; a request without both a positive
// Content-Length and a Content-Type has an empty body by contract.
type RequestBody struct {
	File *BufferedFile
}

// IsMultipart reports whether the body carries an uploaded file.
func (b RequestBody) IsMultipart() bool { return b.File != nil }

// ReadRequest parses a single request from r. Structural violations are
// KindInvalid; stream read failures are KindIO.
func ReadRequest(r *bufio.Reader) (*Request, *AppError) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, IOError("error reading request")
	}

	method, path, version, aerr := parseRequestLine(line)
	if aerr != nil {
		return nil, aerr
	}

	headers, aerr := readHeaders(r)
	if aerr != nil {
		return nil, aerr
	}

	body, aerr := extractBody(r, headers)
	if aerr != nil {
		return nil, aerr
	}

	return &Request{
		Method:  method,
		Path:    path,
		Version: version,
		Headers: headers,
		Body:    body,
	}, nil
}

// parseRequestLine splits the request line on whitespace into method, path
// and version. Fewer than three tokens is a malformed request.
func parseRequestLine(line string) (Method, string, string, *AppError) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", "", "", InvalidError("malformed request line: %q", strings.TrimRight(line, "\r\n"))
	}

	method, aerr := ParseMethod(fields[0])
	if aerr != nil {
		return "", "", "", aerr
	}

	return method, fields[1], fields[2], nil
}

// readHeaders reads "Name: value" lines until the blank line that ends the
// header block. Names are canonicalized, values trimmed.
func readHeaders(r *bufio.Reader) (map[string]string, *AppError) {
	headers := make(map[string]string)

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, IOError("error reading headers: %v", err)
		}
		if strings.TrimRight(line, "\r\n") == "" {
			break
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, InvalidError("error parsing headers: no colon in %q", strings.TrimRight(line, "\r\n"))
		}
		headers[CanonicalHeaderKey(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}

	return headers, nil
}

// extractBody decides whether the request has a body and, if so, dispatches
// to the extractor registered for its content type. A missing Content-Length
// or Content-Type, or a zero length, means an empty body, never an error.
func extractBody(r *bufio.Reader, headers map[string]string) (RequestBody, *AppError) {
	lengthValue, hasLength := headers[HeaderContentLength]
	contentType, hasType := headers[HeaderContentType]
	if !hasLength || !hasType {
		return RequestBody{}, nil
	}

	length, err := strconv.Atoi(lengthValue)
	if err != nil || length < 0 {
		return RequestBody{}, InvalidError("%s request header is not a number", HeaderContentLength)
	}
	if length == 0 {
		return RequestBody{}, nil
	}

	extractor, supported := extractorFor(contentType)
	if !supported {
		return RequestBody{}, InvalidError("unsupported content type: %s", contentType)
	}

	file, aerr := extractor.Extract(r, contentType, length)
	if aerr != nil {
		return RequestBody{}, aerr
	}
	return RequestBody{File: file}, nil
}
