package models

import (
	"context"
	"errors"
	"strconv"
)

type Id int64

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidId    = errors.New("invalid book id")
)

// ParseId parses a base-10 book id as it appears in a request path.
func ParseId(raw string) (Id, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidId
	}
	return Id(id), nil
}

func (id Id) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Library is the persistence contract for books.
//
// Save inserts a book without an id and assigns one. A book with an id overwrites the stored
// record with that id. When no record has that id the book is inserted as a new record under a
// freshly generated id; the caller's id is never used for an insert.
// FindAll returns books in insertion order. FindById returns ErrBookNotFound for unknown ids.
// DeleteById succeeds whether or not the id exists.
type Library interface {
	Save(ctx context.Context, book *Book) (*Book, error)
	FindAll(ctx context.Context) ([]*Book, error)
	FindById(ctx context.Context, id Id) (*Book, error)
	DeleteById(ctx context.Context, id Id) error
}
