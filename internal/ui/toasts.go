package ui

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nibzard/tasktrack-go/internal/notify"
)

// maxToasts bounds how many toasts are visible at once; older ones are evicted.
const maxToasts = 4

type toast struct {
	kind    notify.Kind
	message string
}

// toastShelf holds the visible toasts. Entries expire after ttl.
type toastShelf struct {
	cache *expirable.LRU[uint64, toast]
	seq   uint64
	ttl   time.Duration
}

func newToastShelf(ttl time.Duration) *toastShelf {
	return &toastShelf{
		cache: expirable.NewLRU[uint64, toast](maxToasts, nil, ttl),
		ttl:   ttl,
	}
}

func (s *toastShelf) push(ev notify.Event) {
	s.seq++
	s.cache.Add(s.seq, toast{kind: ev.Kind, message: ev.Message})
}

// visible returns unexpired toasts, oldest first.
func (s *toastShelf) visible() []toast {
	return s.cache.Values()
}
