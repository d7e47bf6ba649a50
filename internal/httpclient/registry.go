package httpclient

import (
	"io"
	"sync"
)

// downloadRegistry tracks destination files of in-flight download requests by token.
type downloadRegistry struct {
	mu      sync.Mutex
	pending map[string]io.WriteCloser
}

func newDownloadRegistry() *downloadRegistry {
	return &downloadRegistry{
		pending: make(map[string]io.WriteCloser),
	}
}

func (r *downloadRegistry) register(token string, dst io.WriteCloser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[token] = dst
}

func (r *downloadRegistry) lookup(token string) (io.WriteCloser, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dst, ok := r.pending[token]
	return dst, ok
}

// release removes the registration and closes its file.
// Only the first call for a token closes anything.
func (r *downloadRegistry) release(token string) (bool, error) {
	r.mu.Lock()
	dst, ok := r.pending[token]
	delete(r.pending, token)
	r.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, dst.Close()
}

// Len returns the number of in-flight downloads.
func (r *downloadRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
