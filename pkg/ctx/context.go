// Package ctx provides a small request context for clouddrive handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for binding and responding:
//
//	func (d *DriveController) Files(c *ctx.Context) {
//	    c.JSON(http.StatusOK, d.drive.List(c.Context()))
//	}
//
//	router.Get("/api/files", "files.index", ctx.Wrap(d.Files))
package ctx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/clouddrive/pkg/bind"
	"github.com/shashiranjanraj/clouddrive/pkg/response"
)

// ErrNoFile is returned by FormFile when the field is absent.
var ErrNoFile = errors.New("no file in form field")

// multipartMemory is how much of a multipart form is held in memory
// before parts spill to temp files.
const multipartMemory = 8 << 20

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // 0 until a response is written
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	if c.R != nil && c.R.MultipartForm != nil {
		_ = c.R.MultipartForm.RemoveAll()
	}
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter ("/api/files/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value, "" if absent.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// ClientIP returns the client address, preferring X-Forwarded-For.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := c.R.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := c.R.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// ShouldBindJSON decodes and validates the JSON body into dest without
// writing a response.
func (c *Context) ShouldBindJSON(dest any) (map[string]string, error) {
	return bind.JSON(c.R, dest)
}

// FormFile returns the first file in a multipart field. maxBytes caps the
// whole request body; 0 leaves it unlimited. A missing field yields ErrNoFile.
func (c *Context) FormFile(field string, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	if maxBytes > 0 {
		c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxBytes)
	}
	if err := c.R.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil, ErrNoFile
		}
		return nil, nil, fmt.Errorf("parse upload: %w", err)
	}
	f, fh, err := c.R.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, ErrNoFile
	}
	return f, fh, err
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Text writes a plain-text response.
func (c *Context) Text(code int, message string) {
	c.status = code
	response.Text(c.W, code, message)
}

// Error sends a JSON error envelope.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// NotFound sends a 404 envelope.
func (c *Context) NotFound() {
	c.Error(http.StatusNotFound, "Not found")
}

// Stream copies body to the response as an attachment named name.
func (c *Context) Stream(name, contentType string, size int64, body io.Reader) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := c.W.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", attachment(name))
	if size > 0 {
		h.Set("Content-Length", strconv.FormatInt(size, 10))
	}
	c.status = http.StatusOK
	c.W.WriteHeader(http.StatusOK)
	_, err := io.Copy(c.W, body)
	return err
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
