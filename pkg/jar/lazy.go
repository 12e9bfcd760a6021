package jar

import "sync"

// Lazy builds a value on first use and caches the value or the error for every later call.
type Lazy[T any] struct {
	once sync.Once
	v    T
	err  error
}

// Get returns the cached value, calling build the first time.
func (l *Lazy[T]) Get(build func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.v, l.err = build()
	})
	return l.v, l.err
}

// Set installs a prebuilt value. Later Get calls never invoke build.
func (l *Lazy[T]) Set(v T) {
	l.once.Do(func() {
		l.v = v
	})
}
