package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/library"
)

// Message actions understood by POST /api/messages.
const (
	ActionSaveBook        = "SaveBook"
	ActionClearBook       = "ClearBook"
	ActionUpdatePageOrder = "UpdatePageOrder"
)

// Message is one UI request. Only the fields of its action are read.
type Message struct {
	Action   string         `json:"action" binding:"required"`
	Book     *entities.Book `json:"book,omitempty"`
	BookURL  string         `json:"bookURL,omitempty"`
	OldIndex int            `json:"oldIndex"`
	NewIndex int            `json:"newIndex"`
	NumPages *int           `json:"numPages,omitempty"`
}

// MessagesController speaks the UI message protocol: the same requests and
// responses the reader UI exchanged with the background page.
type MessagesController struct {
	books BookService
}

func NewMessagesController(books BookService) *MessagesController {
	return &MessagesController{books: books}
}

// Handle handles POST /api/messages
func (mc *MessagesController) Handle(c *gin.Context) {
	var msg Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		respondBadRequest(c, "invalid message: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	switch msg.Action {
	case ActionSaveBook:
		saved, err := mc.books.SaveBook(ctx, msg.Book)
		if err != nil {
			respondDomainError(c, err, "message SaveBook")
			return
		}
		c.JSON(http.StatusOK, saved)

	case ActionClearBook:
		if msg.BookURL == "" {
			respondBadRequest(c, "bookURL is required")
			return
		}
		if err := mc.books.DeleteBook(ctx, msg.BookURL); err != nil {
			respondDomainError(c, err, "message ClearBook")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	case ActionUpdatePageOrder:
		count := 1
		if msg.NumPages != nil {
			count = *msg.NumPages
		}
		book, err := mc.books.ReorderPage(ctx, msg.BookURL, msg.OldIndex, msg.NewIndex, count)
		if errors.Is(err, library.ErrBookNotFound) {
			c.JSON(http.StatusOK, false)
			return
		}
		if err != nil {
			respondDomainError(c, err, "message UpdatePageOrder")
			return
		}
		c.JSON(http.StatusOK, book)

	default:
		respondError(c, http.StatusBadRequest, "unknown_action", "unknown action: "+msg.Action)
	}
}
