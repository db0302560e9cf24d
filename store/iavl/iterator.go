package iavl

import "github.com/iov-one/unichan"

type item struct {
	key   []byte
	value []byte
}

type sliceIterator struct {
	items []item
	pos   int
}

var _ unichan.Iterator = (*sliceIterator)(nil)

func (s *sliceIterator) Next() ([]byte, []byte, error) {
	if s.pos >= len(s.items) {
		return nil, nil, unichan.ErrIteratorDone
	}
	i := s.items[s.pos]
	s.pos++
	return i.key, i.value, nil
}

func (s *sliceIterator) Release() {
	s.items = nil
}
