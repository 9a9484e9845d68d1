package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/biblioteca/internal/services"
)

type BooksController struct {
	catalog services.BookCatalog
}

func NewBooksController(catalog services.BookCatalog) *BooksController {
	return &BooksController{catalog: catalog}
}

type bookRequest struct {
	ISBN      string  `json:"isbn"`
	Title     string  `json:"title" binding:"required"`
	AuthorID  *int64  `json:"author_id"`
	Year      *int    `json:"year"`
	Publisher *string `json:"publisher"`
	Genre     *string `json:"genre"`
}

// ListBooks returns all books joined with author names, ordered by title.
// With a ?title= or ?genre= query it becomes a case-insensitive substring
// search; both criteria together are unioned without duplicates.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	title := c.Query("title")
	genre := c.Query("genre")

	if title == "" && genre == "" {
		books, err := bc.catalog.List()
		if err != nil {
			respondInternalError(c, err, "list books")
			return
		}
		c.JSON(http.StatusOK, books)
		return
	}

	books, err := bc.catalog.Search(title, genre)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// CreateBook catalogs a new book with state Available
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "isbn and title are required")
		return
	}

	book, err := bc.catalog.Add(req.ISBN, req.Title, req.AuthorID, req.Year, req.Publisher, req.Genre)
	if err != nil {
		respondOperationError(c, err, "book")
		return
	}
	respondCreated(c, book)
}

// GetBook returns one book
// GET /api/books/:isbn
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.catalog.GetByISBN(c.Param("isbn"))
	if err != nil {
		respondOperationError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook replaces a book's descriptive fields; the ISBN in the path is
// the immutable lookup key and any ISBN in the body is ignored
// PUT /api/books/:isbn
func (bc *BooksController) UpdateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	if err := bc.catalog.Edit(c.Param("isbn"), req.Title, req.AuthorID, req.Year, req.Publisher, req.Genre); err != nil {
		respondOperationError(c, err, "book")
		return
	}
	respondSuccess(c, "book updated")
}

// DeleteBook removes a book unless an open loan references it
// DELETE /api/books/:isbn
func (bc *BooksController) DeleteBook(c *gin.Context) {
	if err := bc.catalog.Delete(c.Param("isbn")); err != nil {
		respondOperationError(c, err, "book")
		return
	}
	respondSuccess(c, "book deleted")
}

// BookOptions returns the picker of books available for a new loan
// GET /api/books/options
func (bc *BooksController) BookOptions(c *gin.Context) {
	options, err := bc.catalog.ListAvailableForSelection()
	if err != nil {
		respondInternalError(c, err, "book options")
		return
	}
	c.JSON(http.StatusOK, options)
}
