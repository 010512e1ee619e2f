// internal/offline/fetcher.go
package offline

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// Fetcher is the network side of the cache manager: it resolves a request to
// a response entry, or fails the way a dead network fails. An HTTP error
// response (404, 500) is a successful fetch; only transport-level trouble is
// an error.
type Fetcher interface {
	Fetch(ctx context.Context, r *http.Request) (*Entry, error)
}

// OriginFetcher adapts the application's own handler into a Fetcher. A
// handler panic or an expired request context is reported as a fetch error;
// everything the handler writes, whatever the status, comes back as an Entry.
type OriginFetcher struct {
	Handler http.Handler
}

// Fetch runs r through the origin handler and captures the response.
func (f OriginFetcher) Fetch(ctx context.Context, r *http.Request) (_ *Entry, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := newCaptureWriter()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("origin panic: %v", p)
		}
	}()
	f.Handler.ServeHTTP(rec, r.WithContext(ctx))

	return rec.entry(), nil
}

// captureWriter is a minimal in-memory http.ResponseWriter.
type captureWriter struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header)}
}

func (c *captureWriter) Header() http.Header { return c.header }

func (c *captureWriter) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	return c.body.Write(p)
}

func (c *captureWriter) entry() *Entry {
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	return &Entry{
		Status: status,
		Header: c.header.Clone(),
		Body:   append([]byte(nil), c.body.Bytes()...),
	}
}
