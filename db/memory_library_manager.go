package db

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"bookshelf/models"
)

// MemoryLibraryManager keeps books in process memory. It backs the "memory" driver and tests.
type MemoryLibraryManager struct {
	mtx    sync.RWMutex
	books  map[models.Id]models.Book
	lastId models.Id
}

func NewMemoryLibrary() *MemoryLibraryManager {
	return &MemoryLibraryManager{books: make(map[models.Id]models.Book)}
}

func (library *MemoryLibraryManager) Save(_ context.Context, book *models.Book) (*models.Book, error) {
	library.mtx.Lock()
	defer library.mtx.Unlock()

	id, ok := book.Id()
	if _, exists := library.books[id]; !ok || !exists {
		if library.lastId == math.MaxInt64 {
			return nil, ErrIdSequenceExhausted
		}
		library.lastId++
		id = library.lastId
	}

	saved := detach(book.WithID(id))
	library.books[id] = *saved

	return detach(saved), nil
}

// FindAll returns books ordered by id, which is creation order.
func (library *MemoryLibraryManager) FindAll(_ context.Context) ([]*models.Book, error) {
	library.mtx.RLock()
	defer library.mtx.RUnlock()

	books := make([]*models.Book, 0, len(library.books))
	for _, id := range slices.Sorted(maps.Keys(library.books)) {
		book := library.books[id]
		books = append(books, detach(&book))
	}

	return books, nil
}

func (library *MemoryLibraryManager) FindById(_ context.Context, id models.Id) (*models.Book, error) {
	library.mtx.RLock()
	defer library.mtx.RUnlock()

	book, ok := library.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrBookNotFound, id)
	}

	return detach(&book), nil
}

func (library *MemoryLibraryManager) DeleteById(_ context.Context, id models.Id) error {
	library.mtx.Lock()
	defer library.mtx.Unlock()

	delete(library.books, id)

	return nil
}

// detach copies the pointed-to field values so callers never share memory with the store.
func detach(book *models.Book) *models.Book {
	return &models.Book{
		ID:              copyOf(book.ID),
		Title:           copyOf(book.Title),
		Author:          copyOf(book.Author),
		PublicationYear: copyOf(book.PublicationYear),
	}
}

func copyOf[T any](value *T) *T {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
