package recordstore

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Record is a stored value together with its stable id
type Record[T any] struct {
	ID    string
	Value T
}

type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
	OpImport Op = "import"
)

// Change describes a successful mutation. For OpImport ID is empty and
// Fields is nil.
type Change struct {
	Kind   string
	Op     Op
	ID     string
	Fields Fields
}

// Store is an ordered in-memory collection of records of one kind.
// It is not safe for concurrent use.
type Store[T any] struct {
	kind    *Kind[T]
	records []Record[T]
	newID   func() string

	// OnChange, if set, is called after every successful mutation
	OnChange func(Change)
}

type Option func(*options)

type options struct {
	newID func() string
}

// WithIDGenerator replaces the default uuid-based id generator
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// New creates an empty store for records described by kind
func New[T any](kind *Kind[T], opts ...Option) *Store[T] {
	o := options{
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		kind:  kind,
		newID: o.newID,
	}
}

func (s *Store[T]) Kind() *Kind[T] {
	return s.kind
}

func (s *Store[T]) Len() int {
	return len(s.records)
}

// List returns all records in insertion order. The result is a copy.
func (s *Store[T]) List() []Record[T] {
	return append([]Record[T]{}, s.records...)
}

// At returns the record at a zero-based position
func (s *Store[T]) At(index int) (Record[T], error) {
	if err := s.checkIndex(index); err != nil {
		return Record[T]{}, err
	}
	return s.records[index], nil
}

// IndexOf returns position of the record with a given id or -1
func (s *Store[T]) IndexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) Get(id string) (Record[T], error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return Record[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.records[idx], nil
}

func (s *Store[T]) checkIndex(index int) error {
	if index < 0 || index >= len(s.records) {
		return &IndexError{Index: index, Len: len(s.records)}
	}
	return nil
}

func (s *Store[T]) notify(op Op, rec *Record[T]) {
	if s.OnChange == nil {
		return
	}
	c := Change{
		Kind: s.kind.Name,
		Op:   op,
	}
	if rec != nil {
		c.ID = rec.ID
		c.Fields = s.kind.ToFields(&rec.Value)
	}
	s.OnChange(c)
}

// Add validates fields, creates a record and appends it.
// On error the store is unchanged.
func (s *Store[T]) Add(fields Fields) (Record[T], error) {
	v, err := s.kind.Build(fields)
	if err != nil {
		return Record[T]{}, err
	}
	id := s.newID()
	for s.IndexOf(id) >= 0 {
		id = s.newID()
	}
	rec := Record[T]{
		ID:    id,
		Value: v,
	}
	s.records = append(s.records, rec)
	s.notify(OpAdd, &rec)
	return rec, nil
}

// UpdateAt overwrites the supplied fields of the record at index.
// All fields are validated before any is applied.
func (s *Store[T]) UpdateAt(index int, fields Fields) (Record[T], error) {
	if err := s.checkIndex(index); err != nil {
		return Record[T]{}, err
	}
	v, err := s.kind.Patch(s.records[index].Value, fields)
	if err != nil {
		return Record[T]{}, err
	}
	s.records[index].Value = v
	rec := s.records[index]
	s.notify(OpUpdate, &rec)
	return rec, nil
}

// Update is UpdateAt for a record addressed by id
func (s *Store[T]) Update(id string, fields Fields) (Record[T], error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return Record[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.UpdateAt(idx, fields)
}

// RemoveAt deletes the record at index. Positions of records after it
// shift down by one, their ids don't change.
func (s *Store[T]) RemoveAt(index int) (Record[T], error) {
	if err := s.checkIndex(index); err != nil {
		return Record[T]{}, err
	}
	rec := s.records[index]
	s.records = append(s.records[:index], s.records[index+1:]...)
	s.notify(OpRemove, &rec)
	return rec, nil
}

func (s *Store[T]) Remove(id string) (Record[T], error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return Record[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.RemoveAt(idx)
}

// Filter returns records for which keep returns true, in order
func (s *Store[T]) Filter(keep func(r *Record[T]) bool) []Record[T] {
	var res []Record[T]
	for i := range s.records {
		if keep(&s.records[i]) {
			res = append(res, s.records[i])
		}
	}
	return res
}

// Search returns every record matching any of the non-empty criteria.
// Strings compare case-insensitively, numbers and booleans exactly.
// Nothing matching is not an error.
func (s *Store[T]) Search(criteria Fields) ([]Record[T], error) {
	type criterion struct {
		f *Field[T]
		v any
	}
	var crit []criterion
	for name, v := range criteria {
		f, ok := s.kind.field(name)
		if !ok {
			return nil, Invalid(name, "unknown field for %s", s.kind.Name)
		}
		if isEmptyValue(v) {
			continue
		}
		cv, err := convert(f.Type, v)
		if err != nil {
			return nil, &ValidationError{Field: name, Reason: err.Error()}
		}
		crit = append(crit, criterion{f: f, v: cv})
	}
	if len(crit) == 0 {
		return nil, nil
	}
	res := s.Filter(func(r *Record[T]) bool {
		for _, c := range crit {
			if valuesMatch(c.f.Get(&r.Value), c.v) {
				return true
			}
		}
		return false
	})
	return res, nil
}

func valuesMatch(have any, want any) bool {
	if hs, ok := have.(string); ok {
		ws, ok := want.(string)
		return ok && strings.EqualFold(hs, ws)
	}
	return have == want
}

// replace swaps the whole content of the store
func (s *Store[T]) replace(records []Record[T]) {
	s.records = records
	s.notify(OpImport, nil)
}
