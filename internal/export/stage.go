package export

import (
	"sync"

	"github.com/youruser/pledgeapp/internal/poster"
)

// Surface is one off-screen render target attached to a Stage.
type Surface struct {
	id    int
	Key   string
	Scale poster.RenderScale
}

// Stage tracks off-screen surfaces. Every Attach is paired with a Detach on
// all exit paths, so Attached returns to zero once exports finish.
type Stage struct {
	mu       sync.Mutex
	next     int
	surfaces map[int]*Surface
	peak     int
}

func NewStage() *Stage {
	return &Stage{surfaces: make(map[int]*Surface)}
}

// Attach registers a surface.
func (st *Stage) Attach(key string, scale poster.RenderScale) *Surface {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.next++
	s := &Surface{id: st.next, Key: key, Scale: scale}
	st.surfaces[s.id] = s
	if len(st.surfaces) > st.peak {
		st.peak = len(st.surfaces)
	}
	return s
}

// Detach removes a surface. Detaching twice is a no-op.
func (st *Stage) Detach(s *Surface) {
	if s == nil {
		return
	}
	st.mu.Lock()
	delete(st.surfaces, s.id)
	st.mu.Unlock()
}

// Attached is the number of live surfaces.
func (st *Stage) Attached() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.surfaces)
}

// AttachedFor counts live surfaces for one key.
func (st *Stage) AttachedFor(key string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for _, s := range st.surfaces {
		if s.Key == key {
			n++
		}
	}
	return n
}

// Peak is the highest number of simultaneously attached surfaces seen.
func (st *Stage) Peak() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.peak
}
