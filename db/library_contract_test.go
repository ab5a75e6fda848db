package db_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/models"
)

type libraryFactory func(t *testing.T) models.Library

// runLibraryContract runs the behaviour every models.Library implementation must show.
func runLibraryContract(t *testing.T, newLibrary libraryFactory) {
	t.Run("Save assigns an id and keeps the fields", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// act
		saved, err := library.Save(ctx, GivenBook("The Great Gatsby", "F. Scott Fitzgerald", 1925))

		// assert
		require.NoError(t, err)
		require.NotNil(t, saved.ID)
		assertBookFields(t, "The Great Gatsby", "F. Scott Fitzgerald", 1925, saved)
	})

	t.Run("FindById returns the saved book", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// arrange
		saved := GivenSavedBook(t, ctx, library, "The Great Gatsby", "F. Scott Fitzgerald", 1925)

		// act
		found, err := library.FindById(ctx, idOf(t, saved))

		// assert
		require.NoError(t, err)
		assert.Equal(t, saved, found)
	})

	t.Run("FindById of an unknown id is ErrBookNotFound", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// act
		_, err := library.FindById(ctx, models.Id(424242))

		// assert
		assert.ErrorIs(t, err, models.ErrBookNotFound)
	})

	t.Run("Save with an existing id overwrites it", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// arrange
		saved := GivenSavedBook(t, ctx, library, "The Great Gatsby", "F. Scott Fitzgerald", 1925)
		changed := *saved
		changed.Title = ptr("The Great Gatsby (Updated)")

		// act
		updated, err := library.Save(ctx, &changed)

		// assert
		require.NoError(t, err)
		assert.Equal(t, *saved.ID, *updated.ID)
		found, err := library.FindById(ctx, idOf(t, saved))
		require.NoError(t, err)
		assertBookFields(t, "The Great Gatsby (Updated)", "F. Scott Fitzgerald", 1925, found)
		all, err := library.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Save with an unknown id creates the book under a generated id", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// arrange
		existing := GivenSavedBook(t, ctx, library, "The Great Gatsby", "F. Scott Fitzgerald", 1925)

		// act
		created, err := library.Save(ctx, GivenBook("Tender Is the Night", "F. Scott Fitzgerald", 1934).WithID(500))
		require.NoError(t, err)

		// assert
		require.NotNil(t, created.ID)
		assert.NotEqual(t, int64(500), *created.ID)
		assert.Greater(t, *created.ID, *existing.ID)
		_, err = library.FindById(ctx, models.Id(500))
		assert.ErrorIs(t, err, models.ErrBookNotFound)
		found, err := library.FindById(ctx, idOf(t, created))
		require.NoError(t, err)
		assertBookFields(t, "Tender Is the Night", "F. Scott Fitzgerald", 1934, found)
	})

	t.Run("Save with the largest id does not move the id counter", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// arrange
		existing := GivenSavedBook(t, ctx, library, "The Great Gatsby", "F. Scott Fitzgerald", 1925)
		_, err := library.Save(ctx, GivenBook("Tender Is the Night", "F. Scott Fitzgerald", 1934).WithID(math.MaxInt64))
		require.NoError(t, err)

		// act
		next, err := library.Save(ctx, GivenBook("This Side of Paradise", "F. Scott Fitzgerald", 1920))

		// assert
		require.NoError(t, err)
		assert.Less(t, *next.ID, int64(math.MaxInt64))
		_, err = library.FindById(ctx, models.Id(math.MaxInt64))
		assert.ErrorIs(t, err, models.ErrBookNotFound)
		found, err := library.FindById(ctx, idOf(t, existing))
		require.NoError(t, err)
		assertBookFields(t, "The Great Gatsby", "F. Scott Fitzgerald", 1925, found)
		all, err := library.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("FindAll returns books in creation order", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// arrange
		first := GivenSavedBook(t, ctx, library, "The Great Gatsby", "F. Scott Fitzgerald", 1925)
		second := GivenSavedBook(t, ctx, library, "The Great Gatsby 2", "F. Scott Fitzgerald", 1930)

		// act
		books, err := library.FindAll(ctx)

		// assert
		require.NoError(t, err)
		assert.Equal(t, []*models.Book{first, second}, books)
	})

	t.Run("FindAll of an empty library is an empty slice", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// act
		books, err := library.FindAll(ctx)

		// assert
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("DeleteById removes the book", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// arrange
		saved := GivenSavedBook(t, ctx, library, "The Great Gatsby", "F. Scott Fitzgerald", 1925)

		// act
		err := library.DeleteById(ctx, idOf(t, saved))

		// assert
		require.NoError(t, err)
		_, err = library.FindById(ctx, idOf(t, saved))
		assert.ErrorIs(t, err, models.ErrBookNotFound)
	})

	t.Run("DeleteById of an unknown id succeeds", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// act
		err := library.DeleteById(ctx, models.Id(424242))

		// assert
		assert.NoError(t, err)
	})

	t.Run("ids are not reused after deletion", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// arrange
		first := GivenSavedBook(t, ctx, library, "The Great Gatsby", "F. Scott Fitzgerald", 1925)
		require.NoError(t, library.DeleteById(ctx, idOf(t, first)))

		// act
		second := GivenSavedBook(t, ctx, library, "The Great Gatsby 2", "F. Scott Fitzgerald", 1930)

		// assert
		assert.Greater(t, *second.ID, *first.ID)
	})

	t.Run("null fields survive a round trip", func(t *testing.T) {
		// setup
		ctx, library := contractSetup(t, newLibrary)

		// act
		saved, err := library.Save(ctx, &models.Book{Title: ptr("Untitled draft")})
		require.NoError(t, err)
		found, err := library.FindById(ctx, idOf(t, saved))

		// assert
		require.NoError(t, err)
		assert.Equal(t, "Untitled draft", *found.Title)
		assert.Nil(t, found.Author)
		assert.Nil(t, found.PublicationYear)
	})
}

func contractSetup(t *testing.T, newLibrary libraryFactory) (context.Context, models.Library) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	return ctx, newLibrary(t)
}

func GivenBook(title, author string, year int) *models.Book {
	return &models.Book{Title: ptr(title), Author: ptr(author), PublicationYear: ptr(year)}
}

func GivenSavedBook(t *testing.T, ctx context.Context, library models.Library, title, author string, year int) *models.Book {
	t.Helper()

	saved, err := library.Save(ctx, GivenBook(title, author, year))
	require.NoError(t, err, "saving a book in test setup")

	return saved
}

func assertBookFields(t *testing.T, title, author string, year int, book *models.Book) {
	t.Helper()

	require.NotNil(t, book)
	require.NotNil(t, book.Title)
	require.NotNil(t, book.Author)
	require.NotNil(t, book.PublicationYear)
	assert.Equal(t, title, *book.Title)
	assert.Equal(t, author, *book.Author)
	assert.Equal(t, year, *book.PublicationYear)
}

func idOf(t *testing.T, book *models.Book) models.Id {
	t.Helper()

	id, ok := book.Id()
	require.True(t, ok, "book has no id")

	return id
}

func ptr[T any](value T) *T {
	return &value
}
