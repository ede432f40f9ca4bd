package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/backend/internal/feed"
	"github.com/yatube/backend/internal/models"
)

type UserHandler struct {
	db    *gorm.DB
	store *feed.Store
}

func NewUserHandler(db *gorm.DB, store *feed.Store) *UserHandler {
	return &UserHandler{db: db, store: store}
}

func (h *UserHandler) userByUsername(c *gin.Context) (models.User, bool) {
	var user models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return models.User{}, false
	}
	return user, true
}

// GetUserProfile returns a user's profile with one page of their posts
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	user, p, err := h.store.PostsByAuthor(c.Param("username"), pageParam(c))
	if err != nil {
		if errors.Is(err, feed.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	followerCount, followingCount, err := h.store.FollowCounts(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count follows"})
		return
	}

	// Check if current user follows this user
	isFollowing := false
	if currentUserID, ok := extractUserID(c); ok {
		isFollowing, _ = h.store.IsFollowing(currentUserID, user.ID)
	}

	resp := pageResponse(p)
	resp["user"] = gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	}
	resp["posts_count"] = p.Total
	resp["follower_count"] = followerCount
	resp["following_count"] = followingCount
	resp["is_following"] = isFollowing
	c.JSON(http.StatusOK, resp)
}

// FollowUser follows a user (PROTECTED)
func (h *UserHandler) FollowUser(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	author, ok := h.userByUsername(c)
	if !ok {
		return
	}

	if err := h.store.Follow(userID, author.ID); err != nil {
		switch {
		case errors.Is(err, feed.ErrSelfFollow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		case errors.Is(err, feed.ErrAlreadyFollowing):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already following this user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully followed user"})
}

// UnfollowUser unfollows a user (PROTECTED). Unfollowing someone you don't
// follow is a no-op.
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	author, ok := h.userByUsername(c)
	if !ok {
		return
	}

	if err := h.store.Unfollow(userID, author.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed user"})
}

// GetFollowers returns a user's followers
func (h *UserHandler) GetFollowers(c *gin.Context) {
	user, ok := h.userByUsername(c)
	if !ok {
		return
	}

	edges, err := h.store.Followers(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}

	followers := make([]gin.H, 0, len(edges))
	for _, edge := range edges {
		followers = append(followers, gin.H{
			"id":       edge.User.ID,
			"username": edge.User.Username,
		})
	}

	c.JSON(http.StatusOK, followers)
}

// GetFollowing returns users that a user is following
func (h *UserHandler) GetFollowing(c *gin.Context) {
	user, ok := h.userByUsername(c)
	if !ok {
		return
	}

	edges, err := h.store.Following(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch following"})
		return
	}

	following := make([]gin.H, 0, len(edges))
	for _, edge := range edges {
		following = append(following, gin.H{
			"id":       edge.Author.ID,
			"username": edge.Author.Username,
		})
	}

	c.JSON(http.StatusOK, following)
}
