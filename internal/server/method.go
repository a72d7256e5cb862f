package server

import "strings"

// Method is an HTTP request method. The set is closed: a request-line token
// outside this set is a parse error, not a passthrough.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

// ParseMethod parses a request-line method token case-insensitively.
func ParseMethod(token string) (Method, *AppError) {
	switch strings.ToUpper(token) {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	case "PUT":
		return MethodPut, nil
	case "PATCH":
		return MethodPatch, nil
	case "DELETE":
		return MethodDelete, nil
	case "HEAD":
		return MethodHead, nil
	case "OPTIONS":
		return MethodOptions, nil
	case "TRACE":
		return MethodTrace, nil
	case "CONNECT":
		return MethodConnect, nil
	default:
		return "", InvalidError("unknown method: %s", token)
	}
}

func (m Method) String() string { return string(m) }
