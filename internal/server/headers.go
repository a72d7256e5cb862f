package server

import "strings"

// Header names used throughout the request/response cycle.
const (
	HeaderContentLength      = "Content-Length"
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderLocation           = "Location"
)

// CanonicalHeaderKey converts a header name to Header-Case: each
// hyphen-delimited segment starts with an uppercase letter and continues in
// lowercase, so "content-length", "CONTENT-LENGTH" and "Content-Length" all
// normalize to the same map key.
func CanonicalHeaderKey(name string) string {
	segments := strings.Split(name, "-")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		segments[i] = strings.ToUpper(seg[:1]) + strings.ToLower(seg[1:])
	}
	return strings.Join(segments, "-")
}
