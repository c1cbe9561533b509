package policy

import (
	"sync"

	"github.com/dshills/indentguide/internal/host"
)

// Fingerprint identifies the state guides were computed from.
type Fingerprint struct {
	Path    string
	Version int
	TabSize int
}

// FingerprintOf returns the fingerprint of the editor's document.
func FingerprintOf(e host.Editor) (Fingerprint, bool) {
	if e == nil || e.Document() == nil {
		return Fingerprint{}, false
	}
	doc := e.Document()
	return Fingerprint{Path: doc.Path(), Version: doc.Version(), TabSize: e.TabSize()}, true
}

// FingerprintPolicy skips recomputation for a document whose fingerprint is
// unchanged since the last computation. Fingerprints are kept per path, so
// editors showing the same document share one.
type FingerprintPolicy struct {
	mu   sync.Mutex
	last map[string]Fingerprint
}

// NewFingerprint creates an empty fingerprint policy.
func NewFingerprint() *FingerprintPolicy {
	return &FingerprintPolicy{last: make(map[string]Fingerprint)}
}

// Name implements Policy.
func (p *FingerprintPolicy) Name() string { return NameFingerprint }

// ShouldUpdate implements Policy. A positive answer records the fingerprint.
func (p *FingerprintPolicy) ShouldUpdate(ev Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.Trigger == TriggerConfiguration {
		clear(p.last)
		return true
	}

	fp, ok := FingerprintOf(ev.Editor)
	if !ok {
		return false
	}
	if prev, seen := p.last[fp.Path]; seen && prev == fp {
		return false
	}
	p.last[fp.Path] = fp
	return true
}

// Forget drops the fingerprint of path, forcing the next event for it to
// recompute.
func (p *FingerprintPolicy) Forget(path string) {
	p.mu.Lock()
	delete(p.last, path)
	p.mu.Unlock()
}
