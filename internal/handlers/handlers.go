package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/backend/internal/feed"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Group   *GroupHandler
	Comment *CommentHandler
	User    *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers. The page
// cache is owned by the server and injected here; handlers never reach for
// ambient cache state.
func NewHandler(db *gorm.DB, cache *feed.PageCache) *Handler {
	store := feed.NewStore(db)

	return &Handler{
		Auth:    NewAuthHandler(db),
		Post:    NewPostHandler(store, cache),
		Group:   NewGroupHandler(db, store),
		Comment: NewCommentHandler(store),
		User:    NewUserHandler(db, store),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
