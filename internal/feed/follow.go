package feed

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yatube/backend/internal/models"
)

// Follow inserts the edge user -> author. Duplicate edges are rejected
// (the schema carries a unique index on the pair) and so is following
// yourself.
func (s *Store) Follow(userID, authorID int) error {
	if userID == authorID {
		return ErrSelfFollow
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", authorID, ErrNotFound)
		}
		return fmt.Errorf("looking up user %d: %w", authorID, err)
	}

	var existing models.Follow
	err := s.db.Where("user_id = ? AND author_id = ?", userID, authorID).First(&existing).Error
	if err == nil {
		return ErrAlreadyFollowing
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking follow edge: %w", err)
	}

	edge := models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.Create(&edge).Error; err != nil {
		return fmt.Errorf("creating follow edge: %w", err)
	}
	return nil
}

// Unfollow deletes the edge user -> author. Removing a non-existent edge is
// a no-op.
func (s *Store) Unfollow(userID, authorID int) error {
	err := s.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{}).Error
	if err != nil {
		return fmt.Errorf("deleting follow edge: %w", err)
	}
	return nil
}

// IsFollowing reports whether the edge user -> author exists.
func (s *Store) IsFollowing(userID, authorID int) (bool, error) {
	var n int64
	err := s.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking follow edge: %w", err)
	}
	return n > 0, nil
}

// FollowCounts returns how many users follow authorID and how many users
// authorID follows.
func (s *Store) FollowCounts(userID int) (followers, following int64, err error) {
	if err = s.db.Model(&models.Follow{}).Where("author_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, fmt.Errorf("counting followers: %w", err)
	}
	if err = s.db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, fmt.Errorf("counting following: %w", err)
	}
	return followers, following, nil
}

// Followers lists the users following authorID.
func (s *Store) Followers(authorID int) ([]models.Follow, error) {
	edges := make([]models.Follow, 0)
	err := s.db.Where("author_id = ?", authorID).Preload("User").Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("listing followers: %w", err)
	}
	return edges, nil
}

// Following lists the users userID follows.
func (s *Store) Following(userID int) ([]models.Follow, error) {
	edges := make([]models.Follow, 0)
	err := s.db.Where("user_id = ?", userID).Preload("Author").Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("listing following: %w", err)
	}
	return edges, nil
}
