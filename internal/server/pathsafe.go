// pathsafe.go - Path containment and filename validation.
//
// Two different guarantees live here. Viewing canonicalizes the requested
// path (resolving symlinks and "..") and requires the result to stay under
// the uploads root. Uploading targets a file that does not exist yet, so
// canonicalization is impossible; it gets a purely lexical normalization
// instead, a materially weaker check that is kept intentionally and covered
// by its own tests.
package server

import (
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// allowedUploadExtensions is the closed set of file types accepted for
// upload and shared by the view-side filename validation.
var allowedUploadExtensions = map[string]bool{
	"txt": true,
	"png": true,
	"jpg": true,
	"pdf": true,
}

// ValidateUploadFilename checks that a client-supplied filename is a bare,
// valid UTF-8 base name with an allowed extension.
func ValidateUploadFilename(name string) *AppError {
	if name == "" || !utf8.ValidString(name) {
		return InvalidError("invalid file name: %q", name)
	}
	if name == "." || name == ".." || filepath.Base(name) != name {
		return InvalidError("file name must not contain path separators: %q", name)
	}

	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if !allowedUploadExtensions[ext] {
		return InvalidError("file type not allowed: %q", name)
	}
	return nil
}

// resolveViewPath turns a client-supplied request path into a canonical
// absolute path guaranteed to lie inside the uploads root. A path that does
// not exist is KindNotFound; a path that canonicalizes outside the root is
// KindNotPermitted.
func resolveViewPath(root, requestPath string) (string, *AppError) {
	name := strings.TrimPrefix(requestPath, "/")
	name = strings.TrimPrefix(name, "uploads/")

	requested := filepath.Join(root, name)
	resolved, err := filepath.EvalSymlinks(requested)
	if err != nil {
		return "", NotFoundError("canonicalized file not found: %s", requested)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", IOError("failed to resolve path: %s", requested)
	}

	canonicalRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", IOError("uploads directory missing: %s", root)
	}
	canonicalRoot, err = filepath.Abs(canonicalRoot)
	if err != nil {
		return "", IOError("failed to resolve uploads directory: %s", root)
	}

	if !containedIn(canonicalRoot, resolved) {
		return "", NotPermittedError("path escapes uploads directory: %s", requestPath)
	}
	return resolved, nil
}

// normalizeUploadName lexically normalizes an upload target (dropping "."
// components and popping on "..") and requires it to remain under uploads/.
// Write-before-exists: no symlink resolution is possible here.
func normalizeUploadName(name string) (string, *AppError) {
	normalized := path.Join("uploads", name)
	if !strings.HasPrefix(normalized, "uploads/") {
		return "", NotPermittedError("upload path escapes uploads directory: %q", name)
	}
	return strings.TrimPrefix(normalized, "uploads/"), nil
}

// containedIn reports whether target equals root or lies beneath it.
func containedIn(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
