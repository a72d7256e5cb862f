package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template file names consumed by the handlers and the error mapper.
const (
	templateIndex        = "index.html"
	templateUpload       = "upload.html"
	templatePageNotFound = "page-not-found.html"
	templateBadRequest   = "bad-request.html"
	templateAccessDenied = "access-denied.html"
	templateFileNotFound = "file-not-found.html"
	templateServerError  = "server-error.html"
)

// filesListToken is the single substitution point in the listing template.
const filesListToken = "{{FILES_LIST}}"

// TemplateStore hands out paths to the externally supplied HTML templates
// and performs the one string substitution the listing page needs. Templates
// are opaque strings; there is no template engine here on purpose.
type TemplateStore struct {
	dir string
}

// NewTemplateStore creates a store over the given templates directory.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir}
}

// Path returns the on-disk path of a named template.
func (t *TemplateStore) Path(name string) string {
	return filepath.Join(t.dir, name)
}

// RenderListing substitutes the file links into the index template and
// returns the resulting page.
func (t *TemplateStore) RenderListing(entries []FileEntry) (string, *AppError) {
	raw, err := os.ReadFile(t.Path(templateIndex))
	if err != nil {
		return "", IOError("failed to read template: %s", t.Path(templateIndex))
	}

	links := make([]string, 0, len(entries))
	for _, entry := range entries {
		links = append(links, fmt.Sprintf(`<li><a href="%s">%s</a></li>`, entry.Href, entry.Name))
	}

	return strings.Replace(string(raw), filesListToken, strings.Join(links, "\n"), 1), nil
}
