package adaptor

import (
	"strings"
	"sync"
)

// keyFilter drops flattened keys that no configured path refers to. The
// verdict for every key is remembered for the lifetime of the filter.
type keyFilter struct {
	paths []string

	mu    sync.Mutex
	cache map[string]bool
}

func newKeyFilter(paths []string) *keyFilter {
	return &keyFilter{paths: paths, cache: make(map[string]bool, len(paths))}
}

// apply removes unused keys from rec in place.
func (f *keyFilter) apply(rec *Record) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, key := range rec.Keys() {
		used, ok := f.cache[key]
		if !ok {
			used = f.matches(key)
			f.cache[key] = used
		}
		if !used {
			rec.Delete(key)
		}
	}
}

// matches is a plain string prefix test in either direction, so "arr"
// is kept for a path "arr.id" and "ab" also covers "abc.def".
func (f *keyFilter) matches(key string) bool {
	for _, p := range f.paths {
		if strings.HasPrefix(p, key) || strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
