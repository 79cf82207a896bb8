package postgrest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/repositories"
)

const postsTable = "posts"

var _ repositories.PostBackend = (*Store)(nil)

// postPatch is the mutable subset of a post.
type postPatch struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	HeroImageURL *string `json:"hero_image_url"`
	Email        string  `json:"email,omitempty"`
}

func (s *Store) ListPosts(ctx context.Context, params repositories.ListParams) ([]models.Post, error) {
	from, _ := params.Range()
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	q.Set("offset", strconv.Itoa(from))
	q.Set("limit", strconv.Itoa(params.PageSize))
	if params.Search != "" {
		q.Set("or", searchFilter(params.Search))
	}

	posts := []models.Post{}
	if _, err := s.do(ctx, request{method: http.MethodGet, table: postsTable, query: q}, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) CountPosts(ctx context.Context, search string) (int64, error) {
	q := url.Values{}
	q.Set("select", "id")
	if search != "" {
		q.Set("or", searchFilter(search))
	}
	h, err := s.do(ctx, request{
		method: http.MethodHead,
		table:  postsTable,
		query:  q,
		header: http.Header{"Prefer": {"count=exact"}},
	}, nil)
	if err != nil {
		return 0, err
	}
	return contentRangeTotal(h)
}

func (s *Store) GetPost(ctx context.Context, id string) (models.Post, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", eq(id))

	var post models.Post
	_, err := s.do(ctx, request{method: http.MethodGet, table: postsTable, query: q, single: true}, &post)
	return post, err
}

func (s *Store) CreatePost(ctx context.Context, post models.Post, token string) (models.Post, error) {
	var created models.Post
	_, err := s.do(ctx, request{
		method: http.MethodPost,
		table:  postsTable,
		token:  token,
		body:   post,
		single: true,
		header: http.Header{"Prefer": {"return=representation"}},
	}, &created)
	return created, err
}

func (s *Store) UpdatePost(ctx context.Context, id string, post models.Post, token string) (models.Post, error) {
	q := url.Values{}
	q.Set("id", eq(id))
	q.Set("select", "*")

	var updated models.Post
	_, err := s.do(ctx, request{
		method: http.MethodPatch,
		table:  postsTable,
		query:  q,
		token:  token,
		body:   postPatch{Title: post.Title, Content: post.Content, HeroImageURL: post.HeroImageURL, Email: post.Email},
		single: true,
		header: http.Header{"Prefer": {"return=representation"}},
	}, &updated)
	return updated, err
}

func (s *Store) DeletePost(ctx context.Context, id string, token string) (models.Post, error) {
	q := url.Values{}
	q.Set("id", eq(id))
	q.Set("select", "*")

	var deleted models.Post
	_, err := s.do(ctx, request{
		method: http.MethodDelete,
		table:  postsTable,
		query:  q,
		token:  token,
		single: true,
		header: http.Header{"Prefer": {"return=representation"}},
	}, &deleted)
	return deleted, err
}
