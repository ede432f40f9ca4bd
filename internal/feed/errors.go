package feed

import "errors"

var (
	// ErrNotFound reports that a referenced group, user, post or comment
	// does not exist. Callers wrap it with the entity description.
	ErrNotFound = errors.New("not found")

	// ErrNotFollowing is the "no feed" signal: the user follows nobody.
	// Distinct from a feed page with zero items, which means the followed
	// authors have no posts.
	ErrNotFollowing = errors.New("not following anyone")

	// ErrAlreadyFollowing reports a duplicate follow edge.
	ErrAlreadyFollowing = errors.New("already following")

	// ErrSelfFollow reports an attempt to follow oneself.
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrNotAuthor reports a write attempted by someone other than the
	// author of the post or comment.
	ErrNotAuthor = errors.New("not the author")
)
