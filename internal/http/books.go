package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pagescraper/internal/entities"
)

// BookService is the reconciler surface the HTTP API drives. Every write
// goes through it so dedup and index bounds are enforced in one place.
type BookService interface {
	GetBook(ctx context.Context, key string) (*entities.Book, error)
	ListBooks(ctx context.Context) ([]entities.Book, error)
	CurrentBook(ctx context.Context) (*entities.Book, error)
	EnsureBook(ctx context.Context, key string) (*entities.Book, error)
	SaveBook(ctx context.Context, book *entities.Book) (*entities.Book, error)
	DeleteBook(ctx context.Context, key string) error
	ReorderPage(ctx context.Context, key string, oldIndex, newIndex, count int) (*entities.Book, error)
	DeletePage(ctx context.Context, key string, index int) (*entities.Book, error)
}

type BooksController struct {
	books BookService
}

func NewBooksController(books BookService) *BooksController {
	return &BooksController{
		books: books,
	}
}

// GetAllBooks handles GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.books.ListBooks(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook handles GET /api/books/book?url=
func (controller *BooksController) GetBook(c *gin.Context) {
	key, ok := requireBookURL(c)
	if !ok {
		return
	}
	book, err := controller.books.GetBook(c.Request.Context(), key)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// GetCurrentBook handles GET /api/books/current, the book for the active tab.
func (controller *BooksController) GetCurrentBook(c *gin.Context) {
	book, err := controller.books.CurrentBook(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "current book")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

type ensureBookRequest struct {
	URL string `json:"url" binding:"required"`
}

// EnsureBook handles POST /api/books/ensure. The reader UI calls it when it
// opens so an empty book exists before the first capture.
func (controller *BooksController) EnsureBook(c *gin.Context) {
	var req ensureBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "url is required")
		return
	}
	book, err := controller.books.EnsureBook(c.Request.Context(), req.URL)
	if err != nil {
		respondDomainError(c, err, "ensure book")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// SaveBook handles PUT /api/books, a full overwrite of the page list.
func (controller *BooksController) SaveBook(c *gin.Context) {
	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book: "+err.Error())
		return
	}
	saved, err := controller.books.SaveBook(c.Request.Context(), &book)
	if err != nil {
		respondDomainError(c, err, "save book")
		return
	}
	c.IndentedJSON(http.StatusOK, saved)
}

// DeleteBook handles DELETE /api/books?url=. Deleting a missing book
// succeeds.
func (controller *BooksController) DeleteBook(c *gin.Context) {
	key, ok := requireBookURL(c)
	if !ok {
		return
	}
	if err := controller.books.DeleteBook(c.Request.Context(), key); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type reorderRequest struct {
	URL      string `json:"url" binding:"required"`
	OldIndex int    `json:"old_index"`
	NewIndex int    `json:"new_index"`
	NumPages *int   `json:"num_pages"`
}

// ReorderPages handles PATCH /api/books/order
func (controller *BooksController) ReorderPages(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "url is required")
		return
	}
	count := 1
	if req.NumPages != nil {
		count = *req.NumPages
	}
	book, err := controller.books.ReorderPage(c.Request.Context(), req.URL, req.OldIndex, req.NewIndex, count)
	if err != nil {
		respondDomainError(c, err, "reorder pages")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// DeletePage handles DELETE /api/books/pages/:index?url=
func (controller *BooksController) DeletePage(c *gin.Context) {
	key, ok := requireBookURL(c)
	if !ok {
		return
	}
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}
	book, err := controller.books.DeletePage(c.Request.Context(), key, index)
	if err != nil {
		respondDomainError(c, err, "delete page")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}
