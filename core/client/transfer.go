package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// TransferState is the lifecycle position of a Transfer.
type TransferState int

const (
	StateRequesting TransferState = iota
	StateStreaming
	StateComplete
	StateFailed
)

func (s TransferState) String() string {
	switch s {
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressFunc receives the bytes received so far and the expected total.
// Total is -1 when the server did not announce a length.
type ProgressFunc func(current, total int64)

var errClosedEarly = errors.New("transfer closed before completion")

// Transfer streams one file from the server. It moves from requesting to
// streaming once the response headers arrive, and ends either complete,
// when the body was read to its announced end, or failed.
type Transfer struct {
	Path string

	mu       sync.Mutex
	state    TransferState
	err      error
	body     io.ReadCloser
	offset   int64
	current  int64
	total    int64
	progress ProgressFunc
}

// FetchOption customizes a Transfer.
type FetchOption func(*Transfer)

// WithProgress registers fn to be called after every read.
func WithProgress(fn ProgressFunc) FetchOption {
	return func(t *Transfer) {
		t.progress = fn
	}
}

// Fetch requests the content of path starting at offset. The returned
// transfer is streaming; the caller must Close it.
func (c *Client) Fetch(ctx context.Context, path string, offset int64, opts ...FetchOption) (*Transfer, error) {
	t := &Transfer{Path: path, state: StateRequesting, total: -1}
	for _, opt := range opts {
		opt(t)
	}

	req, err := c.newRequest(ctx, c.fileURL(path))
	if err != nil {
		return nil, t.fail(err)
	}
	if offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, t.fail(fmt.Errorf("%w: fetch %s: %w", ErrTransport, path, err))
	}

	switch {
	case resp.StatusCode == http.StatusPartialContent && offset > 0:
		t.offset = offset
	case resp.StatusCode == http.StatusOK:
		// Range ignored; the body starts at zero.
	default:
		resp.Body.Close()
		return nil, t.fail(fmt.Errorf("%w: fetch %s returned %d", ErrTransport, path, resp.StatusCode))
	}

	t.mu.Lock()
	t.body = resp.Body
	t.current = t.offset
	if resp.ContentLength >= 0 {
		t.total = t.offset + resp.ContentLength
	}
	t.state = StateStreaming
	t.mu.Unlock()

	c.logger.Debug("Transfer started",
		zap.String("path", path),
		zap.Int64("offset", t.offset),
		zap.Int64("total", t.total),
	)
	return t, nil
}

// fileURL addresses path under the /files mount. Each segment is escaped,
// so names holding '%', '#', '?' or spaces reach the server unchanged.
func (c *Client) fileURL(p string) *url.URL {
	segments := strings.Split(p, "/")
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}

	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/files/" + p
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/files/" + strings.Join(escaped, "/")
	return &u
}

// Read implements io.Reader. Reaching the end of a body shorter than
// announced fails the transfer with io.ErrUnexpectedEOF.
func (t *Transfer) Read(p []byte) (int, error) {
	t.mu.Lock()
	if t.state != StateStreaming {
		err := t.err
		state := t.state
		t.mu.Unlock()
		if state == StateComplete {
			return 0, io.EOF
		}
		if err == nil {
			err = fmt.Errorf("%w: transfer not started", ErrTransport)
		}
		return 0, err
	}
	body := t.body
	t.mu.Unlock()

	n, err := body.Read(p)

	t.mu.Lock()
	t.current += int64(n)
	current, total, progress := t.current, t.total, t.progress
	switch {
	case err == io.EOF:
		if total >= 0 && current != total {
			err = t.failLocked(fmt.Errorf("%w: %s: %w", ErrTransport, t.Path, io.ErrUnexpectedEOF))
		} else {
			t.state = StateComplete
		}
	case err != nil:
		err = t.failLocked(fmt.Errorf("%w: %s: %w", ErrTransport, t.Path, err))
	}
	t.mu.Unlock()

	if progress != nil && n > 0 {
		progress(current, total)
	}
	return n, err
}

// Close releases the response body. Closing a transfer that is still
// streaming marks it failed.
func (t *Transfer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateStreaming {
		t.failLocked(fmt.Errorf("%w: %s: %w", ErrTransport, t.Path, errClosedEarly))
	}
	if t.body == nil {
		return nil
	}
	body := t.body
	t.body = nil
	return body.Close()
}

// State returns the current lifecycle position.
func (t *Transfer) State() TransferState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure cause once the transfer has failed.
func (t *Transfer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Progress returns the bytes received so far, counting from the start of the
// file, and the expected total or -1.
func (t *Transfer) Progress() (current, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.total
}

// Offset is where the body started within the file.
func (t *Transfer) Offset() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offset
}

func (t *Transfer) fail(err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failLocked(err)
}

func (t *Transfer) failLocked(err error) error {
	if t.state == StateFailed || t.state == StateComplete {
		return err
	}
	t.state = StateFailed
	t.err = err
	return err
}
