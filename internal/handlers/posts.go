package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yatube/backend/internal/feed"
	"github.com/yatube/backend/internal/models"
)

type PostHandler struct {
	store *feed.Store
	cache *feed.PageCache
}

func NewPostHandler(store *feed.Store, cache *feed.PageCache) *PostHandler {
	return &PostHandler{store: store, cache: cache}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func pageResponse(p feed.Page) gin.H {
	return gin.H{
		"posts": p.Items,
		"page":  p.Number,
		"pages": p.Pages,
		"total": p.Total,
	}
}

// GetPosts returns one page of the site-wide listing. The page snapshot is
// cached for the TTL window: posts created in the meantime only show up
// after expiry or an explicit clear.
func (h *PostHandler) GetPosts(c *gin.Context) {
	page := pageParam(c)

	if snapshot, ok := h.cache.Get(page); ok {
		c.JSON(http.StatusOK, pageResponse(snapshot))
		return
	}

	p, err := h.store.AllPosts(page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	h.cache.Populate(page, p)
	c.JSON(http.StatusOK, pageResponse(p))
}

// GetFeed returns one page of posts by the authors the current user
// follows. A user following nobody gets "following": false, which is not
// the same thing as an empty page.
func (h *PostHandler) GetFeed(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	p, err := h.store.FollowedFeed(userID, pageParam(c))
	if errors.Is(err, feed.ErrNotFollowing) {
		c.JSON(http.StatusOK, gin.H{
			"following": false,
			"posts":     []models.Post{},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	resp := pageResponse(p)
	resp["following"] = true
	c.JSON(http.StatusOK, resp)
}

// GetPost returns a single post with its comments and the author's total
// post count.
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	post, err := h.store.GetPost(postID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comments, err := h.store.Comments(post.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	postsCount, err := h.store.CountByAuthor(post.AuthorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":        post,
		"comments":    comments,
		"posts_count": postsCount,
	})
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input struct {
		Text    string `json:"text" binding:"required"`
		GroupID *int   `json:"group_id"`
		Image   string `json:"image"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	post := models.Post{
		Text:     input.Text,
		Image:    input.Image,
		GroupID:  input.GroupID,
		AuthorID: authorID,
	}

	if err := h.store.CreatePost(&post); err != nil {
		if errors.Is(err, feed.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post (PROTECTED - requires ownership)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.UpdatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.store.UpdatePost(userID, postID, input)
	if err != nil {
		h.writeError(c, postID, err, "edit")
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post (PROTECTED - requires ownership)
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.store.DeletePost(userID, postID); err != nil {
		h.writeError(c, postID, err, "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// ClearCache drops every cached listing page so the next request recomputes
// from the store. Administrative / test surface.
func (h *PostHandler) ClearCache(c *gin.Context) {
	h.cache.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}

// writeError maps store failures on post mutations. A non-author gets the
// post's own path back so the client can redirect there.
func (h *PostHandler) writeError(c *gin.Context, postID int, err error, action string) {
	switch {
	case errors.Is(err, feed.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case errors.Is(err, feed.ErrNotAuthor):
		c.JSON(http.StatusForbidden, gin.H{
			"error":    fmt.Sprintf("You can only %s your own posts", action),
			"redirect": fmt.Sprintf("/api/posts/%d", postID),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to %s post", action)})
	}
}
