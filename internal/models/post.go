package models

import "time"

type Post struct {
	ID      int       `gorm:"primaryKey" json:"id"`
	Text    string    `gorm:"not null" json:"text"`
	PubDate time.Time `gorm:"autoCreateTime;index;<-:create" json:"pub_date"`
	Image   string    `json:"image,omitempty"`

	AuthorID int  `gorm:"not null;index" json:"author_id"`
	User     User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"user"`

	// GroupID is nullable: a post may be groupless.
	GroupID *int   `gorm:"index" json:"group_id,omitempty"`
	Group   *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"group,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Text    string `json:"text"`
	GroupID *int   `json:"group_id"`
	Image   string `json:"image"`
}

type UpdatePostRequest struct {
	Text    string `json:"text"`
	GroupID *int   `json:"group_id"`
	Image   string `json:"image"`
}
