// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper returns canned responses in order, repeating the last.
type SequenceRoundTripper struct {
	mu        sync.Mutex
	responses []*http.Response
	errs      []error
	calls     int
}

func NewSequenceRoundTripper(responses []*http.Response, errs []error) *SequenceRoundTripper {
	return &SequenceRoundTripper{responses: responses, errs: errs}
}

func (s *SequenceRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], s.errs[i]
}

func (s *SequenceRoundTripper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// CountingExchanger records code exchange calls and returns a fixed error.
// Release blocks each call until signalled when a gate channel is set.
type CountingExchanger struct {
	mu    sync.Mutex
	calls int
	Err   error
	Gate  chan struct{}
}

func (e *CountingExchanger) ExchangeCode(ctx context.Context, provider, code string) error {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.Gate != nil {
		<-e.Gate
	}
	return e.Err
}

func (e *CountingExchanger) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// CountingChecker records username availability queries.
type CountingChecker struct {
	mu        sync.Mutex
	queries   []string
	Available bool
	Err       error
}

func (c *CountingChecker) CheckUsername(ctx context.Context, username string) (bool, error) {
	c.mu.Lock()
	c.queries = append(c.queries, username)
	c.mu.Unlock()
	return c.Available, c.Err
}

func (c *CountingChecker) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.queries))
	copy(out, c.queries)
	return out
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
