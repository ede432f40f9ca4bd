package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/yatube/backend/internal/feed"
	"github.com/yatube/backend/internal/models"
)

type GroupHandler struct {
	db    *gorm.DB
	store *feed.Store
}

func NewGroupHandler(db *gorm.DB, store *feed.Store) *GroupHandler {
	return &GroupHandler{db: db, store: store}
}

// GetGroups lists every group.
func (h *GroupHandler) GetGroups(c *gin.Context) {
	groups := make([]models.Group, 0)
	if err := h.db.Order("title").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GetGroup returns a group and one page of its posts. A group without posts
// is a valid, empty page; an unknown slug is a 404.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, p, err := h.store.PostsInGroup(c.Param("slug"), pageParam(c))
	if err != nil {
		if errors.Is(err, feed.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group posts"})
		return
	}

	resp := pageResponse(p)
	resp["group"] = group
	c.JSON(http.StatusOK, resp)
}

// CreateGroup creates a group (PROTECTED - administrative surface). The
// slug is derived from the title when not supplied.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var input models.CreateGroupRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	groupSlug := input.Slug
	if groupSlug == "" {
		groupSlug = slug.Make(input.Title)
	}

	var existing models.Group
	if err := h.db.Where("slug = ?", groupSlug).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already taken"})
		return
	}

	group := models.Group{
		Title:       input.Title,
		Slug:        groupSlug,
		Description: input.Description,
	}

	if err := h.db.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, group)
}
