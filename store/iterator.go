package store

import "github.com/iov-one/unichan"

// sliceIterator walks over a snapshot of the requested range. Taking a
// snapshot keeps the iterator valid while the store is being written to.
type sliceIterator struct {
	items []setItem
	pos   int
}

var _ unichan.Iterator = (*sliceIterator)(nil)

func (s *sliceIterator) Next() ([]byte, []byte, error) {
	if s.pos >= len(s.items) {
		return nil, nil, unichan.ErrIteratorDone
	}
	item := s.items[s.pos]
	s.pos++
	return item.key, item.value, nil
}

func (s *sliceIterator) Release() {
	s.items = nil
}
