// router.go - Route dispatch and the four request handlers.
package server

import "strings"

// ConnInfo carries per-connection metadata into the handlers for logging and
// auditing.
type ConnInfo struct {
	RequestID  string
	RemoteAddr string
}

// Router maps (method, path) to a handler. It is stateless per request: the
// same request always resolves to the same handler.
type Router struct {
	store     *FileStore
	templates *TemplateStore
	audit     *AuditStore
	errors    *ErrorMapper
}

// NewRouter wires the handlers to their collaborators.
func NewRouter(store *FileStore, templates *TemplateStore, audit *AuditStore, errors *ErrorMapper) *Router {
	return &Router{store: store, templates: templates, audit: audit, errors: errors}
}

// Handle resolves and runs the handler for a request. A request matching no
// route gets the "page not found" response; handler failures are returned
// for the caller to map.
func (rt *Router) Handle(req *Request, conn ConnInfo) (*Response, *AppError) {
	switch {
	case req.Method == MethodGet && req.Path == "/":
		return rt.listFiles()
	case req.Method == MethodGet && req.Path == "/upload":
		return rt.uploadForm()
	case req.Method == MethodPost && req.Path == "/upload":
		return rt.uploadFile(req, conn)
	case req.Method == MethodGet && strings.HasPrefix(req.Path, "/uploads/"):
		return rt.viewFile(req.Path, conn)
	default:
		return rt.errors.PageNotFound(req.Method, req.Path, logFields(conn)), nil
	}
}

// listFiles renders the listing page: every file under the uploads root as a
// link, substituted into the index template.
func (rt *Router) listFiles() (*Response, *AppError) {
	entries, aerr := rt.store.List()
	if aerr != nil {
		return nil, aerr
	}

	page, aerr := rt.templates.RenderListing(entries)
	if aerr != nil {
		return nil, aerr
	}

	return NewResponse().Body(TextBody(page)).Build(), nil
}

// uploadForm serves the upload form template.
func (rt *Router) uploadForm() (*Response, *AppError) {
	return NewResponse().Body(FileBody(rt.templates.Path(templateUpload))).Build(), nil
}

// uploadFile stores a multipart upload and redirects the client back to the
// listing. Requests without a multipart body are invalid.
func (rt *Router) uploadFile(req *Request, conn ConnInfo) (*Response, *AppError) {
	if !req.Body.IsMultipart() {
		return nil, InvalidError("upload requires a multipart/form-data body")
	}
	file := req.Body.File

	if aerr := rt.store.Save(file); aerr != nil {
		rt.audit.Record(AuditEntry{
			Action:     AuditActionUpload,
			Filename:   file.Name,
			RemoteAddr: conn.RemoteAddr,
			RequestID:  conn.RequestID,
			Success:    false,
			ErrorMsg:   aerr.Error(),
		})
		return nil, aerr
	}

	rt.audit.Record(AuditEntry{
		Action:     AuditActionUpload,
		Filename:   file.Name,
		RemoteAddr: conn.RemoteAddr,
		RequestID:  conn.RequestID,
		Success:    true,
	})

	return NewResponse().
		Status(StatusSeeOther).
		Header(HeaderLocation, "/").
		Build(), nil
}

// viewFile serves one uploaded file after the containment check.
func (rt *Router) viewFile(requestPath string, conn ConnInfo) (*Response, *AppError) {
	resolved, aerr := rt.store.Resolve(requestPath)
	if aerr != nil {
		rt.audit.Record(AuditEntry{
			Action:     AuditActionView,
			Filename:   requestPath,
			RemoteAddr: conn.RemoteAddr,
			RequestID:  conn.RequestID,
			Success:    false,
			ErrorMsg:   aerr.Error(),
		})
		return nil, aerr
	}

	rt.audit.Record(AuditEntry{
		Action:     AuditActionView,
		Filename:   requestPath,
		RemoteAddr: conn.RemoteAddr,
		RequestID:  conn.RequestID,
		Success:    true,
	})

	return NewResponse().Body(FileBody(resolved)).Build(), nil
}

func logFields(conn ConnInfo) map[string]any {
	return map[string]any{
		"request_id":  conn.RequestID,
		"remote_addr": conn.RemoteAddr,
	}
}
