// server.go - Listener, dispatcher, and the per-connection lifecycle.
package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Server accepts TCP connections and hands each one to the worker pool as a
// single job: parse, route, serialize, write, close.
type Server struct {
	cfg Config

	store     *FileStore
	templates *TemplateStore
	audit     *AuditStore
	router    *Router
	errors    *ErrorMapper
	pool      *WorkerPool
	limiter   *rateLimiter

	mu       sync.Mutex
	listener net.Listener
}

// New builds a server from its configuration: uploads directory ensured,
// audit store opened, worker pool started.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := NewFileStore(cfg.UploadsDir)
	if aerr := store.EnsureRoot(); aerr != nil {
		return nil, aerr
	}
	if err := store.Watch(); err != nil {
		Warn("listing watcher unavailable, rescanning on every request", map[string]any{
			"error": err.Error(),
		})
	}

	templates := NewTemplateStore(cfg.TemplatesDir)

	audit := NewAuditStore(cfg.AuditDB)
	if err := audit.Init(); err != nil {
		_ = store.Close()
		return nil, err
	}

	pool, err := NewWorkerPool(cfg.Workers)
	if err != nil {
		_ = store.Close()
		_ = audit.Close()
		return nil, err
	}

	mapper := NewErrorMapper(templates)

	var limiter *rateLimiter
	if cfg.RateLimit > 0 {
		limiter = newRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}

	return &Server{
		cfg:       cfg,
		store:     store,
		templates: templates,
		audit:     audit,
		router:    NewRouter(store, templates, audit, mapper),
		errors:    mapper,
		pool:      pool,
		limiter:   limiter,
	}, nil
}

// Listen binds the configured address. Split from Serve so callers (and
// tests) can learn the bound address before accepting.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound listen address, or empty before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until the listener closes. Accepting never
// blocks on worker availability: each connection becomes a queued job.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	Info("server listening", map[string]any{"addr": ln.Addr().String(), "workers": s.cfg.Workers})

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			Error("failed to accept connection", nil, err)
			continue
		}

		s.pool.Submit(func() error { return s.handleConn(conn) })
	}
}

// Start is Listen followed by Serve.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Close stops accepting, drains in-flight jobs, and releases resources.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.pool.Stop()
	if s.limiter != nil {
		s.limiter.close()
	}
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	if cerr := s.audit.Close(); err == nil {
		err = cerr
	}
	return err
}

// handleConn runs one full connection lifecycle on a worker. Whatever
// happens, the client gets a well-formed HTTP response before the connection
// closes.
func (s *Server) handleConn(conn net.Conn) error {
	defer func() { _ = conn.Close() }()

	info := ConnInfo{
		RequestID:  uuid.NewString(),
		RemoteAddr: conn.RemoteAddr().String(),
	}

	response := s.respond(bufio.NewReader(conn), info)
	if _, err := conn.Write(response); err != nil {
		return &AppError{Kind: KindIO, Message: "error writing response to stream: " + err.Error()}
	}

	// Half-close and drain any unread request bytes (e.g. a rate-limited
	// request that was never parsed); closing with unread data pending turns
	// into a TCP reset that discards the response before the client reads it.
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _ = io.Copy(io.Discard, conn)
	return nil
}

// respond produces the wire bytes for one connection: rate limit check,
// parse, route, serialize, with every error mapped to a response.
func (s *Server) respond(r *bufio.Reader, info ConnInfo) []byte {
	fields := logFields(info)

	if s.limiter != nil && !s.limiter.allow(clientIP(info.RemoteAddr)) {
		denied := s.errors.Map(NotPermittedError("too many requests from %s", clientIP(info.RemoteAddr)), fields)
		return s.serialize(denied, fields)
	}

	req, aerr := ReadRequest(r)
	if aerr != nil {
		return s.serialize(s.errors.Map(aerr, fields), fields)
	}

	Info(req.Method.String()+" "+req.Path, fields)

	resp, aerr := s.router.Handle(req, info)
	if aerr != nil {
		resp = s.errors.Map(aerr, fields)
	}
	return s.serialize(resp, fields)
}

// serialize turns a response into bytes. A response whose file body fails to
// resolve (e.g. a deleted file, a missing template) is mapped once more;
// if even the error template cannot be served, a synthesized body goes out.
func (s *Server) serialize(resp *Response, fields map[string]any) []byte {
	wire, aerr := resp.Bytes()
	if aerr == nil {
		return wire
	}

	mapped := s.errors.Map(aerr, fields)
	wire, aerr = mapped.Bytes()
	if aerr == nil {
		return wire
	}
	return fallbackBytes(mapped.Status)
}
