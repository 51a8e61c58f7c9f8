package schedule

import "sync/atomic"

// Holder owns the active Bundle. Readers never see a partially loaded
// schedule: Reload swaps the pointer only after LoadDir succeeded.
type Holder struct {
	dir string
	cur atomic.Pointer[Bundle]
}

func NewHolder(dir string) (*Holder, error) {
	h := &Holder{dir: dir}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// NewHolderWith wraps an already loaded bundle.
func NewHolderWith(dir string, b *Bundle) *Holder {
	h := &Holder{dir: dir}
	h.cur.Store(b)
	return h
}

func (h *Holder) Dir() string { return h.dir }

func (h *Holder) Get() *Bundle { return h.cur.Load() }

// Reload re-reads the config directory. On error the previous bundle stays
// active.
func (h *Holder) Reload() error {
	b, err := LoadDir(h.dir)
	if err != nil {
		return err
	}
	h.cur.Store(b)
	return nil
}
