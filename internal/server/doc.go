// Package server implements a minimal HTTP/1.1 file drop: a bespoke request
// parser with a single-part multipart/form-data decoder, a response builder
// that resolves file bodies at serialization time, path-containment checks
// around an uploads directory, and a fixed-size worker pool dispatching one
// connection per job.
//
// Connections are one request, one response, then closed; there is no
// keep-alive, chunked encoding, or TLS. Every fallible operation in the
// request path returns an *AppError, and exactly one component (ErrorMapper)
// converts errors into responses and log lines.
package server
