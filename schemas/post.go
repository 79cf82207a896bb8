package schemas

import (
	"strings"
	"time"

	"github.com/cppla/miniblog/models"
)

// PostInput is the camelCase body accepted by the posts endpoints.
type PostInput struct {
	ID           string     `json:"id" validate:"omitempty,uuid"`
	Title        string     `json:"title" validate:"required"`
	Content      string     `json:"content" validate:"required"`
	HeroImageURL *string    `json:"heroImageUrl" validate:"omitempty,url"`
	UserID       string     `json:"userId" validate:"required,uuid"`
	CreatedAt    *time.Time `json:"createdAt"`
}

var postMessages = map[string]string{
	"id.uuid":          "Invalid post ID format",
	"title.required":   "Title is required",
	"content.required": "Content is required",
	"heroImageUrl.url": "Invalid hero image URL",
	"userId.required":  "User ID is required",
	"userId.uuid":      "Invalid user ID format",
}

// ParsePost validates in and returns the storage row. On failure the returned
// error is a *ValidationError listing every violated field.
func ParsePost(in PostInput) (models.Post, error) {
	in.Title = textOrEmpty(in.Title)
	in.Content = textOrEmpty(in.Content)
	if in.HeroImageURL != nil {
		trimmed := strings.TrimSpace(*in.HeroImageURL)
		if trimmed == "" {
			in.HeroImageURL = nil
		} else {
			in.HeroImageURL = &trimmed
		}
	}

	if err := check(in, postMessages); err != nil {
		return models.Post{}, err
	}

	createdAt := time.Now().UTC()
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		createdAt = in.CreatedAt.UTC()
	}

	return models.Post{
		ID:           in.ID,
		Title:        in.Title,
		Content:      in.Content,
		HeroImageURL: in.HeroImageURL,
		UserID:       in.UserID,
		CreatedAt:    createdAt,
	}, nil
}
