package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"bookshelf/db"
	"bookshelf/models"
	"bookshelf/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errStoreDown = errors.New("connection refused")

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func GivenRoutes(library models.Library, activity *service.ActivityHandler) *gin.Engine {
	return service.SetupRoutes(service.NewBookHandler(library, discardLogger()), activity, discardLogger())
}

func perform(t *testing.T, routes http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "response body: %s", rec.Body.String())

	return out
}

func GivenBook(title, author string, year int) *models.Book {
	return &models.Book{Title: &title, Author: &author, PublicationYear: &year}
}

func GivenSavedBook(t *testing.T, library models.Library, title, author string, year int) *models.Book {
	t.Helper()

	saved, err := library.Save(context.Background(), GivenBook(title, author, year))
	require.NoError(t, err, "saving a book in test setup")

	return saved
}

func GivenMemoryLibrary() *db.MemoryLibraryManager {
	return db.NewMemoryLibrary()
}

// failingLibrary fails every call the way an unreachable database would.
type failingLibrary struct{}

func (failingLibrary) Save(context.Context, *models.Book) (*models.Book, error) {
	return nil, errStoreDown
}

func (failingLibrary) FindAll(context.Context) ([]*models.Book, error) {
	return nil, errStoreDown
}

func (failingLibrary) FindById(context.Context, models.Id) (*models.Book, error) {
	return nil, errStoreDown
}

func (failingLibrary) DeleteById(context.Context, models.Id) error {
	return errStoreDown
}

// memoryCacher is a RequestCacher keeping everything in a map, newest entry first.
type memoryCacher struct {
	entries map[string][]string
	failing bool
}

func newMemoryCacher() *memoryCacher {
	return &memoryCacher{entries: make(map[string][]string)}
}

func (m *memoryCacher) Write(key string, value []byte) error {
	if m.failing {
		return errStoreDown
	}
	m.entries[key] = append([]string{string(value)}, m.entries[key]...)
	if len(m.entries[key]) > service.MAX_NUMBER_CACHED {
		m.entries[key] = m.entries[key][:service.MAX_NUMBER_CACHED]
	}
	return nil
}

func (m *memoryCacher) Read(key string) ([]string, error) {
	if m.failing {
		return nil, errStoreDown
	}
	return m.entries[key], nil
}
