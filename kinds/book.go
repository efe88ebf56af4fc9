package kinds

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kjk/records/recordstore"
)

// ErrUnavailable is returned when borrowing a book with no copies left
var ErrUnavailable = errors.New("no copies available")

type Book struct {
	Title  string
	Author string
	Copies int
}

func checkCopies(v any) error {
	if n := v.(int); n < 0 {
		return fmt.Errorf("can't be negative, got %d", n)
	}
	return nil
}

var BookKind = &recordstore.Kind[Book]{
	Name: "book",
	Fields: []recordstore.Field[Book]{
		{
			Name:     "title",
			Type:     recordstore.String,
			Required: true,
			Get:      func(b *Book) any { return b.Title },
			Set:      func(b *Book, v any) { b.Title = v.(string) },
		},
		{
			Name:     "author",
			Type:     recordstore.String,
			Required: true,
			Get:      func(b *Book) any { return b.Author },
			Set:      func(b *Book, v any) { b.Author = v.(string) },
		},
		{
			Name:     "copies",
			Type:     recordstore.Int,
			Required: true,
			Get:      func(b *Book) any { return b.Copies },
			Set:      func(b *Book, v any) { b.Copies = v.(int) },
			Check:    checkCopies,
		},
	},
}

func NewBookStore(opts ...recordstore.Option) *recordstore.Store[Book] {
	return recordstore.New(BookKind, opts...)
}

// findBook returns index of the first book with a given title,
// compared case-insensitively
func findBook(s *recordstore.Store[Book], title string) (int, error) {
	title = strings.TrimSpace(title)
	for i, rec := range s.List() {
		if strings.EqualFold(rec.Value.Title, title) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: book '%s'", recordstore.ErrNotFound, title)
}

// Borrow takes one copy of a book out of the library
func Borrow(s *recordstore.Store[Book], title string) (recordstore.Record[Book], error) {
	idx, err := findBook(s, title)
	if err != nil {
		return recordstore.Record[Book]{}, err
	}
	rec, _ := s.At(idx)
	if rec.Value.Copies <= 0 {
		return recordstore.Record[Book]{}, fmt.Errorf("%w: '%s'", ErrUnavailable, rec.Value.Title)
	}
	return s.UpdateAt(idx, recordstore.Fields{"copies": rec.Value.Copies - 1})
}

// Return puts a borrowed copy back
func Return(s *recordstore.Store[Book], title string) (recordstore.Record[Book], error) {
	idx, err := findBook(s, title)
	if err != nil {
		return recordstore.Record[Book]{}, err
	}
	rec, _ := s.At(idx)
	return s.UpdateAt(idx, recordstore.Fields{"copies": rec.Value.Copies + 1})
}

// Available returns books with at least one copy in the library
func Available(s *recordstore.Store[Book]) []recordstore.Record[Book] {
	return s.Filter(func(r *recordstore.Record[Book]) bool {
		return r.Value.Copies > 0
	})
}

func SeedBooks(s *recordstore.Store[Book]) error {
	books := []recordstore.Fields{
		{"title": "Atomic Habits", "author": "James Clear", "copies": 5},
		{"title": "Knotebook", "author": "Toby", "copies": 6},
		{"title": "Brave New World", "author": "Aldous Huxley", "copies": 7},
		{"title": "The Twilight Saga", "author": "M.K", "copies": 7},
	}
	return seed(s, books)
}
