package process_blob

import (
	"fmt"
	"sync"

	"gosplit/process"
)

// BlobAttacher hands out registered blobs by name, like a process list
type BlobAttacher struct {
	mu       sync.Mutex
	procs    map[string]*ProcessBlob
	attaches int
}

var _ process.Attacher = (*BlobAttacher)(nil)

func NewBlobAttacher() *BlobAttacher {
	return &BlobAttacher{procs: make(map[string]*ProcessBlob)}
}

// Set registers p under name, replacing any earlier process. A nil p removes it.
func (b *BlobAttacher) Set(name string, p *ProcessBlob) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p == nil {
		delete(b.procs, name)
		return
	}
	b.procs[name] = p
}

// Attach returns the process registered under name if it is still running
func (b *BlobAttacher) Attach(name string) (process.Process, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.procs[name]
	if !ok || !p.IsOpen() {
		return nil, fmt.Errorf("%s: %w", name, process.ErrProcessNotFound)
	}
	b.attaches++
	return p, nil
}

// Attaches counts successful Attach calls
func (b *BlobAttacher) Attaches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attaches
}
