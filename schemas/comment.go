package schemas

import (
	"time"

	"github.com/cppla/miniblog/models"
)

// CommentInput is the camelCase body accepted by the comments endpoints.
type CommentInput struct {
	ID        string     `json:"id" validate:"omitempty,uuid"`
	PostID    string     `json:"postId" validate:"required,uuid"`
	UserID    string     `json:"userId" validate:"required,uuid"`
	Content   *string    `json:"content"`
	Email     string     `json:"email" validate:"omitempty,email"`
	CreatedAt *time.Time `json:"createdAt"`
}

var commentMessages = map[string]string{
	"id.uuid":         "Invalid comment ID format",
	"postId.required": "Post ID is required",
	"postId.uuid":     "Invalid post ID format",
	"userId.required": "User ID is required",
	"userId.uuid":     "Invalid user ID format",
	"email.email":     "Invalid email",
}

// ParseComment validates in and returns the storage row. Content stays optional
// here; handlers that need it enforce presence themselves.
func ParseComment(in CommentInput) (models.Comment, error) {
	if in.Content != nil {
		text := textOrEmpty(*in.Content)
		in.Content = &text
	}

	if err := check(in, commentMessages); err != nil {
		return models.Comment{}, err
	}

	out := models.Comment{
		ID:        in.ID,
		PostID:    in.PostID,
		UserID:    in.UserID,
		Email:     in.Email,
		CreatedAt: time.Now().UTC(),
	}
	if in.Content != nil {
		out.Content = *in.Content
	}
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		out.CreatedAt = in.CreatedAt.UTC()
	}
	return out, nil
}
