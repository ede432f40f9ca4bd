package feed

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yatube/backend/internal/models"
)

// Comments returns every comment on a post, newest first.
func (s *Store) Comments(postID int) ([]models.Comment, error) {
	if _, err := s.getBare(postID); err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0)
	err := s.db.Where("post_id = ?", postID).
		Preload("User").
		Order("created DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("fetching comments of post %d: %w", postID, err)
	}
	return comments, nil
}

// AddComment attaches a comment to an existing post. The creation timestamp
// is assigned at insert time.
func (s *Store) AddComment(userID, postID int, text string) (models.Comment, error) {
	if _, err := s.getBare(postID); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{Text: text, AuthorID: userID, PostID: postID}
	if err := s.db.Create(&comment).Error; err != nil {
		return models.Comment{}, fmt.Errorf("creating comment: %w", err)
	}
	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes an author's own comment.
func (s *Store) DeleteComment(userID, commentID int) error {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment %d: %w", commentID, ErrNotFound)
		}
		return fmt.Errorf("looking up comment %d: %w", commentID, err)
	}
	if comment.AuthorID != userID {
		return ErrNotAuthor
	}
	if err := s.db.Delete(&comment).Error; err != nil {
		return fmt.Errorf("deleting comment %d: %w", commentID, err)
	}
	return nil
}
