package models

import "time"

type Comment struct {
	ID      int       `gorm:"primaryKey" json:"id"`
	Text    string    `gorm:"not null" json:"text"`
	Created time.Time `gorm:"autoCreateTime;index;<-:create" json:"created"`

	AuthorID int  `gorm:"not null;index" json:"author_id"`
	User     User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"user"`

	PostID int  `gorm:"not null;index" json:"post_id"`
	Post   Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

type CreateCommentRequest struct {
	Text string `json:"text"`
}
