// errormap.go - The single boundary between AppError and HTTP.
//
// All error logging for the request path happens here, so diagnostics stay
// consistent and nothing is logged twice. The mapping from kind to (status,
// template, severity) is total.
package server

// ErrorMapper turns classified errors into well-formed HTTP responses.
type ErrorMapper struct {
	templates *TemplateStore
}

// NewErrorMapper creates a mapper using the given template store for error
// pages.
func NewErrorMapper(templates *TemplateStore) *ErrorMapper {
	return &ErrorMapper{templates: templates}
}

// Map builds the response for an error. Client-caused kinds (Invalid,
// NotFound, NotPermitted) are logged as warnings; IO and Unknown are logged
// as errors since they point at the server's own environment.
func (m *ErrorMapper) Map(appErr *AppError, fields map[string]any) *Response {
	switch appErr.Kind {
	case KindInvalid:
		Warn(appErr.Message, fields)
		return NewResponse().
			Status(StatusNotFound).
			Body(FileBody(m.templates.Path(templateBadRequest))).
			Build()
	case KindNotFound:
		Warn(appErr.Message, fields)
		return NewResponse().
			Status(StatusNotFound).
			Body(FileBody(m.templates.Path(templateFileNotFound))).
			Build()
	case KindNotPermitted:
		Warn(appErr.Message, fields)
		return NewResponse().
			Status(StatusForbidden).
			Body(FileBody(m.templates.Path(templateAccessDenied))).
			Build()
	case KindIO:
		Error(appErr.Message, fields, nil)
		return NewResponse().
			Status(StatusServerError).
			Body(FileBody(m.templates.Path(templateServerError))).
			Build()
	default:
		Error(appErr.Message, fields, nil)
		return NewResponse().
			Status(StatusServerError).
			Body(FileBody(m.templates.Path(templateServerError))).
			Build()
	}
}

// PageNotFound builds the response for a request that matched no route.
func (m *ErrorMapper) PageNotFound(method Method, path string, fields map[string]any) *Response {
	Warn("page not found: "+method.String()+" "+path, fields)
	return NewResponse().
		Status(StatusNotFound).
		Body(FileBody(m.templates.Path(templatePageNotFound))).
		Build()
}

// fallbackBytes is the response of last resort, used when even the error
// template cannot be served. Its body is synthesized, so serialization
// cannot fail.
func fallbackBytes(status Status) []byte {
	resp := NewResponse().
		Status(status).
		Body(TextBody("<html><body><h1>" + status.String() + "</h1></body></html>")).
		Build()

	bytes, aerr := resp.Bytes()
	if aerr != nil {
		// Text bodies never fail to resolve; keep the compiler honest.
		return []byte("HTTP/1.1 500 SERVER ERROR\r\nContent-Length: 0\r\n\r\n")
	}
	return bytes
}
