package models

import "time"

// Follow is a directed edge: UserID follows AuthorID. The composite unique
// index keeps the edge set free of duplicates.
type Follow struct {
	ID       int  `gorm:"primaryKey" json:"id"`
	UserID   int  `gorm:"not null;index;uniqueIndex:idx_follow_edge" json:"user_id"`
	AuthorID int  `gorm:"not null;index;uniqueIndex:idx_follow_edge" json:"author_id"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`

	CreatedAt time.Time `json:"created_at"`
}
