package service

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"bookshelf/models"
)

var (
	jsonNull       = []byte("null")
	errMissingBook = errors.New("request body must be a book object")
)

// BookHandler serves the book endpoints. Every request makes exactly one library call.
type BookHandler struct {
	library models.Library
	logger  *slog.Logger
}

func NewBookHandler(library models.Library, logger *slog.Logger) *BookHandler {
	return &BookHandler{library: library, logger: logger}
}

func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.library.FindAll(c.Request.Context())
	if err != nil {
		h.storeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) GetBookById(c *gin.Context) {
	id, ok := bookId(c)
	if !ok {
		return
	}

	book, err := h.library.FindById(c.Request.Context(), id)

	if errors.Is(err, models.ErrBookNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("book with Id: '%v' not found", id)})
		return
	}

	if err != nil {
		h.storeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// CreateBook saves the body as a new book. A client supplied id is ignored.
func (h *BookHandler) CreateBook(c *gin.Context) {
	book, ok := bindBook(c)
	if !ok {
		return
	}

	book.ID = nil

	saved, err := h.library.Save(c.Request.Context(), book)
	if err != nil {
		h.storeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// UpdateBookById overwrites the book stored under the path id. An unknown id stores the body
// as a new book under a generated id.
func (h *BookHandler) UpdateBookById(c *gin.Context) {
	id, ok := bookId(c)
	if !ok {
		return
	}

	book, ok := bindBook(c)
	if !ok {
		return
	}

	saved, err := h.library.Save(c.Request.Context(), book.WithID(id))
	if err != nil {
		h.storeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (h *BookHandler) DeleteBookById(c *gin.Context) {
	id, ok := bookId(c)
	if !ok {
		return
	}

	if err := h.library.DeleteById(c.Request.Context(), id); err != nil {
		h.storeFailed(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *BookHandler) storeFailed(c *gin.Context, err error) {
	h.logger.Error("library operation failed",
		"error", err.Error(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		requestIdKey, c.GetString(requestIdKey),
	)

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": http.StatusText(http.StatusInternalServerError)})
}

// bindBook decodes the request body into a book. An empty body or a JSON null is rejected.
func bindBook(c *gin.Context) (*models.Book, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return nil, false
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": errMissingBook.Error()})
		return nil, false
	}

	var book models.Book
	if err := binding.JSON.BindBody(trimmed, &book); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return nil, false
	}

	return &book, true
}

func bookId(c *gin.Context) (models.Id, bool) {
	id, err := models.ParseId(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("%s: '%s'", err.Error(), c.Param("id"))})
		return 0, false
	}

	return id, true
}
