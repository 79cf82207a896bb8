package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a blog entry owned by the identity that created it.
// JSON field names follow the storage (snake_case) convention.
type Post struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id,omitempty"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	HeroImageURL *string   `gorm:"type:text" json:"hero_image_url,omitempty"`
	UserID       string    `gorm:"index;size:36;not null" json:"user_id"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName pins the table shared with the hosted platform schema.
func (Post) TableName() string { return "posts" }

// BeforeCreate assigns an id when the database does not generate one.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return nil
}

// PostPage is one page of a post listing plus the filter-matching total.
type PostPage struct {
	Posts      []Post `json:"posts"`
	TotalCount int64  `json:"totalCount"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}
