package postgrest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/repositories"
)

const commentsTable = "comments"

var _ repositories.CommentBackend = (*Store)(nil)

type commentPatch struct {
	Content string `json:"content"`
}

func commentFilter(postID, commentID string) url.Values {
	q := url.Values{}
	q.Set("id", eq(commentID))
	q.Set("post_id", eq(postID))
	q.Set("select", "*")
	return q
}

func (s *Store) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("post_id", eq(postID))
	q.Set("order", "created_at.asc")

	comments := []models.Comment{}
	if _, err := s.do(ctx, request{method: http.MethodGet, table: commentsTable, query: q}, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Store) CreateComment(ctx context.Context, comment models.Comment, token string) (models.Comment, error) {
	var created models.Comment
	_, err := s.do(ctx, request{
		method: http.MethodPost,
		table:  commentsTable,
		token:  token,
		body:   comment,
		single: true,
		header: http.Header{"Prefer": {"return=representation"}},
	}, &created)
	return created, err
}

func (s *Store) UpdateComment(ctx context.Context, postID, commentID string, comment models.Comment, token string) (models.Comment, error) {
	var updated models.Comment
	_, err := s.do(ctx, request{
		method: http.MethodPatch,
		table:  commentsTable,
		query:  commentFilter(postID, commentID),
		token:  token,
		body:   commentPatch{Content: comment.Content},
		single: true,
		header: http.Header{"Prefer": {"return=representation"}},
	}, &updated)
	return updated, err
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string, token string) (models.Comment, error) {
	var deleted models.Comment
	_, err := s.do(ctx, request{
		method: http.MethodDelete,
		table:  commentsTable,
		query:  commentFilter(postID, commentID),
		token:  token,
		single: true,
		header: http.Header{"Prefer": {"return=representation"}},
	}, &deleted)
	return deleted, err
}
