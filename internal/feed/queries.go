package feed

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yatube/backend/internal/models"
)

// Store is the query-composition layer: every post listing the application
// serves is built here as an explicit, named query over the relational
// store. Listings are played back in reverse chronological order, ties
// broken by insertion order. The store itself never caches; the page cache
// sits in front of it.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

const postOrder = "pub_date DESC, id DESC"

// listPosts runs the shared fetch for one page of an already-filtered post
// query. The filter is applied to both the count and the item fetch so the
// page totals match the window.
func (s *Store) listPosts(filtered *gorm.DB, page int) (Page, error) {
	number, offset := window(page)

	var total int64
	if err := filtered.Session(&gorm.Session{}).Model(&models.Post{}).Count(&total).Error; err != nil {
		return Page{}, fmt.Errorf("counting posts: %w", err)
	}

	items := make([]models.Post, 0, PageSize)
	err := filtered.Session(&gorm.Session{}).
		Preload("User").
		Preload("Group").
		Order(postOrder).
		Offset(offset).
		Limit(PageSize).
		Find(&items).Error
	if err != nil {
		return Page{}, fmt.Errorf("fetching posts: %w", err)
	}

	return Page{Items: items, Number: number, Total: total, Pages: pageCount(total)}, nil
}

// AllPosts returns one page of the site-wide listing, newest first.
func (s *Store) AllPosts(page int) (Page, error) {
	return s.listPosts(s.db.Model(&models.Post{}), page)
}

// PostsInGroup returns the group with the given slug and one page of its
// posts. A group with zero posts yields an empty page, not an error.
func (s *Store) PostsInGroup(slug string, page int) (models.Group, Page, error) {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, Page{}, fmt.Errorf("group %q: %w", slug, ErrNotFound)
		}
		return models.Group{}, Page{}, fmt.Errorf("looking up group %q: %w", slug, err)
	}

	p, err := s.listPosts(s.db.Model(&models.Post{}).Where("group_id = ?", group.ID), page)
	return group, p, err
}

// PostsByAuthor returns the user with the given username and one page of
// their posts. A user with zero posts yields an empty page.
func (s *Store) PostsByAuthor(username string, page int) (models.User, Page, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, Page{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return models.User{}, Page{}, fmt.Errorf("looking up user %q: %w", username, err)
	}

	p, err := s.listPosts(s.db.Model(&models.Post{}).Where("author_id = ?", user.ID), page)
	return user, p, err
}

// FollowedFeed returns one page of posts authored by anyone the user
// follows. When the user follows nobody it returns ErrNotFollowing, which
// callers must distinguish from an empty page (followed authors exist but
// have not posted).
func (s *Store) FollowedFeed(userID, page int) (Page, error) {
	var edges int64
	if err := s.db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&edges).Error; err != nil {
		return Page{}, fmt.Errorf("counting follows: %w", err)
	}
	if edges == 0 {
		return Page{}, ErrNotFollowing
	}

	followed := s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
	return s.listPosts(s.db.Model(&models.Post{}).Where("author_id IN (?)", followed), page)
}

// GetPost returns a single post with its author and group.
func (s *Store) GetPost(id int) (models.Post, error) {
	var post models.Post
	err := s.db.Preload("User").Preload("Group").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return models.Post{}, fmt.Errorf("looking up post %d: %w", id, err)
	}
	return post, nil
}

// CountByAuthor returns how many posts a user has published.
func (s *Store) CountByAuthor(authorID int) (int64, error) {
	var n int64
	err := s.db.Model(&models.Post{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

// CreatePost inserts a new post. The publication timestamp is assigned by
// the store at insert time and never changes afterwards.
func (s *Store) CreatePost(post *models.Post) error {
	if post.GroupID != nil {
		var group models.Group
		if err := s.db.First(&group, *post.GroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("group %d: %w", *post.GroupID, ErrNotFound)
			}
			return fmt.Errorf("looking up group %d: %w", *post.GroupID, err)
		}
	}
	if err := s.db.Create(post).Error; err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	return s.db.Preload("User").Preload("Group").First(post, post.ID).Error
}

// getBare fetches a post row without its associations, for mutation.
func (s *Store) getBare(postID int) (models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return models.Post{}, fmt.Errorf("looking up post %d: %w", postID, err)
	}
	return post, nil
}

// UpdatePost applies author-only edits to text, group and image. The
// publication timestamp is left untouched.
func (s *Store) UpdatePost(userID, postID int, req models.UpdatePostRequest) (models.Post, error) {
	post, err := s.getBare(postID)
	if err != nil {
		return models.Post{}, err
	}
	if post.AuthorID != userID {
		return models.Post{}, ErrNotAuthor
	}

	if req.Text != "" {
		post.Text = req.Text
	}
	if req.Image != "" {
		post.Image = req.Image
	}
	post.GroupID = req.GroupID
	if req.GroupID != nil {
		var group models.Group
		if err := s.db.First(&group, *req.GroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Post{}, fmt.Errorf("group %d: %w", *req.GroupID, ErrNotFound)
			}
			return models.Post{}, fmt.Errorf("looking up group %d: %w", *req.GroupID, err)
		}
	}

	if err := s.db.Save(&post).Error; err != nil {
		return models.Post{}, fmt.Errorf("updating post %d: %w", postID, err)
	}
	return s.GetPost(postID)
}

// DeletePost removes an author's own post together with its comments.
func (s *Store) DeletePost(userID, postID int) error {
	post, err := s.getBare(postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrNotAuthor
	}

	if err := s.db.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("deleting comments of post %d: %w", postID, err)
	}
	if err := s.db.Delete(&models.Post{}, postID).Error; err != nil {
		return fmt.Errorf("deleting post %d: %w", postID, err)
	}
	return nil
}
