// Package media turns uploaded files and camera frames into in-memory image
// sources, and tracks the revocable references handed out for them.
package media

import (
	"image"
	"sync"

	"github.com/google/uuid"
)

// Origin records where a source came from.
type Origin string

const (
	OriginUpload Origin = "upload"
	OriginCamera Origin = "camera"
	OriginPhoto  Origin = "photo"
)

// Source is a decoded, displayable image plus its encoded bytes.
type Source struct {
	Image       image.Image
	Bytes       []byte
	ContentType string
	Origin      Origin
}

// Ref is a revocable handle to a Source, shaped like a blob URL.
type Ref string

// Refs owns every live Source reference. Each Create must be matched by a
// Revoke.
type Refs struct {
	mu    sync.Mutex
	items map[Ref]Source
}

func NewRefs() *Refs {
	return &Refs{items: make(map[Ref]Source)}
}

// Create registers src and returns its reference.
func (r *Refs) Create(src Source) Ref {
	ref := Ref("blob:" + uuid.NewString())
	r.mu.Lock()
	r.items[ref] = src
	r.mu.Unlock()
	return ref
}

// Get resolves a live reference.
func (r *Refs) Get(ref Ref) (Source, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.items[ref]
	return src, ok
}

// Revoke releases ref. Revoking an unknown or empty ref is a no-op.
func (r *Refs) Revoke(ref Ref) bool {
	if ref == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[ref]; !ok {
		return false
	}
	delete(r.items, ref)
	return true
}

// Len is the number of live references.
func (r *Refs) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
