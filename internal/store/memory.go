package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

type memStore[T Record] struct {
	mu     sync.Mutex
	coll   Collection[T]
	nextID int64
	docs   map[int64][]byte
	fields map[int64]map[string]string
}

// NewMemory returns an in-memory store for the collection. Records are
// deep-copied through JSON on every write and read, so callers never share
// state with the store. Intended for tests and the occasional tool.
func NewMemory[T Record](coll Collection[T]) Store[T] {
	return &memStore[T]{
		coll:   coll,
		docs:   make(map[int64][]byte),
		fields: make(map[int64]map[string]string),
	}
}

func (s *memStore[T]) Add(ctx context.Context, rec T) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := s.indexValues(rec)
	if err := s.checkUnique(fields, 0); err != nil {
		return 0, err
	}

	s.nextID++
	id := s.nextID
	rec.SetKey(id)
	doc, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("%w: encoding %s record: %v", ErrOpFailed, s.coll.Name, err)
	}
	s.docs[id] = doc
	s.fields[id] = fields
	return id, nil
}

func (s *memStore[T]) Get(ctx context.Context, key int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[key]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return s.decode(doc, key)
}

func (s *memStore[T]) GetAll(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []T
	for _, id := range s.sortedKeys() {
		rec, err := s.decode(s.docs[id], id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *memStore[T]) Update(ctx context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.Key()
	if id == 0 {
		return fmt.Errorf("%w: update of %s record without key", ErrOpFailed, s.coll.Name)
	}
	fields := s.indexValues(rec)
	if err := s.checkUnique(fields, id); err != nil {
		return err
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encoding %s record: %v", ErrOpFailed, s.coll.Name, err)
	}
	s.docs[id] = doc
	s.fields[id] = fields
	if id > s.nextID {
		s.nextID = id
	}
	return nil
}

func (s *memStore[T]) Delete(ctx context.Context, key int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	delete(s.fields, key)
	return nil
}

func (s *memStore[T]) GetByIndex(ctx context.Context, index string, value any) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.coll.index(index); !ok {
		return nil, fmt.Errorf("%w: collection %s has no index %s", ErrOpFailed, s.coll.Name, index)
	}
	want := indexKey(value)
	var recs []T
	for _, id := range s.sortedKeys() {
		if s.fields[id][index] != want {
			continue
		}
		rec, err := s.decode(s.docs[id], id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *memStore[T]) GetSingleByIndex(ctx context.Context, index string, value any) (T, error) {
	recs, err := s.GetByIndex(ctx, index, value)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(recs) == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return recs[0], nil
}

func (s *memStore[T]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = make(map[int64][]byte)
	s.fields = make(map[int64]map[string]string)
	return nil
}

func (s *memStore[T]) indexValues(rec T) map[string]string {
	fields := make(map[string]string, len(s.coll.Indexes))
	raw := s.coll.Fields(rec)
	for _, idx := range s.coll.Indexes {
		fields[idx.Name] = indexKey(raw[idx.Name])
	}
	return fields
}

func (s *memStore[T]) checkUnique(fields map[string]string, self int64) error {
	for _, idx := range s.coll.Indexes {
		if !idx.Unique {
			continue
		}
		for id, existing := range s.fields {
			if id != self && existing[idx.Name] == fields[idx.Name] {
				return fmt.Errorf("%w: duplicate %s in %s", ErrConstraint, idx.Name, s.coll.Name)
			}
		}
	}
	return nil
}

func (s *memStore[T]) decode(doc []byte, key int64) (T, error) {
	rec := s.coll.New()
	if err := json.Unmarshal(doc, rec); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: decoding %s record %d: %v", ErrOpFailed, s.coll.Name, key, err)
	}
	rec.SetKey(key)
	return rec, nil
}

func (s *memStore[T]) sortedKeys() []int64 {
	keys := make([]int64, 0, len(s.docs))
	for id := range s.docs {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// indexKey normalizes an index value so that, for example, int and int64
// forms of the same id compare equal.
func indexKey(v any) string {
	return fmt.Sprint(v)
}
