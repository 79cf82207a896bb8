package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/miniblog/metrics"
	"github.com/cppla/miniblog/models"
)

const (
	postListCachePrefix   = "cache:posts:list:"
	postDetailCachePrefix = "cache:post:detail:"
	postCacheTTL          = 5 * time.Minute
)

// PostsRepository exposes CRUD operations on posts.
type PostsRepository struct {
	backend PostBackend
	cache   Cache
	tracker
}

// NewPostsRepository wires a backend with logging, metrics and an optional cache (nil disables it).
func NewPostsRepository(backend PostBackend, cache Cache, log *zap.Logger, m metrics.Provider) *PostsRepository {
	if cache == nil {
		cache = nopCache{}
	}
	return &PostsRepository{backend: backend, cache: cache, tracker: newTracker(log, m)}
}

// GetAllPosts returns one page of posts and the total number of matching posts.
// The list and count queries are always both issued and one failing does not
// discard the other: a failed count degrades the total to 0 and a failed list
// leaves the page empty. Only when both fail is an error returned.
func (r *PostsRepository) GetAllPosts(ctx context.Context, params ListParams) (models.PostPage, error) {
	params = params.Normalize()
	page := models.PostPage{Posts: []models.Post{}, Page: params.Page, PageSize: params.PageSize}

	cacheKey := fmt.Sprintf("%spage=%d:size=%d", postListCachePrefix, params.Page, params.PageSize)
	cacheable := params.Search == ""
	if cacheable {
		if b, ok := r.cache.GetBytes(ctx, cacheKey); ok {
			var cached models.PostPage
			if err := json.Unmarshal(b, &cached); err == nil {
				r.metrics.IncrementCacheHits()
				return cached, nil
			}
		}
		r.metrics.IncrementCacheMisses()
	}

	start := time.Now()
	posts, listErr := r.backend.ListPosts(ctx, params)
	listErr = r.done("PostsRepository.GetAllPosts.list", start, listErr,
		zap.Int("page", params.Page), zap.Int("page_size", params.PageSize), zap.String("search", params.Search))

	start = time.Now()
	total, countErr := r.backend.CountPosts(ctx, params.Search)
	countErr = r.done("PostsRepository.GetAllPosts.count", start, countErr, zap.String("search", params.Search))

	if listErr != nil && countErr != nil {
		return page, listErr
	}
	if listErr == nil && posts != nil {
		page.Posts = posts
	}
	if countErr == nil {
		page.TotalCount = total
	}

	if cacheable && listErr == nil && countErr == nil {
		r.cache.SetJSON(ctx, cacheKey, page, postCacheTTL)
	}
	return page, nil
}

// GetPostByID fetches a single post.
func (r *PostsRepository) GetPostByID(ctx context.Context, id string) (models.Post, error) {
	cacheKey := postDetailCachePrefix + id
	if b, ok := r.cache.GetBytes(ctx, cacheKey); ok {
		var cached models.Post
		if err := json.Unmarshal(b, &cached); err == nil {
			r.metrics.IncrementCacheHits()
			return cached, nil
		}
	}
	r.metrics.IncrementCacheMisses()

	start := time.Now()
	post, err := r.backend.GetPost(ctx, id)
	if err = r.done("PostsRepository.GetPostByID", start, err, zap.String("id", id)); err != nil {
		return models.Post{}, err
	}
	r.cache.SetJSON(ctx, cacheKey, post, postCacheTTL)
	return post, nil
}

// CreatePost inserts post on behalf of the token's owner.
func (r *PostsRepository) CreatePost(ctx context.Context, post models.Post, token string) (models.Post, error) {
	start := time.Now()
	created, err := r.backend.CreatePost(ctx, post, token)
	if err = r.done("PostsRepository.CreatePost", start, err, zap.String("user_id", post.UserID)); err != nil {
		return models.Post{}, err
	}
	r.cache.InvalidatePrefix(ctx, postListCachePrefix)
	return created, nil
}

// UpdatePost replaces the mutable fields of post id. ErrNotFound covers both a
// missing row and a row the caller does not own.
func (r *PostsRepository) UpdatePost(ctx context.Context, id string, post models.Post, token string) (models.Post, error) {
	start := time.Now()
	updated, err := r.backend.UpdatePost(ctx, id, post, token)
	if err = r.done("PostsRepository.UpdatePost", start, err, zap.String("id", id)); err != nil {
		return models.Post{}, err
	}
	r.invalidate(ctx, id)
	return updated, nil
}

// DeletePost removes post id and returns the deleted row.
func (r *PostsRepository) DeletePost(ctx context.Context, id string, token string) (models.Post, error) {
	start := time.Now()
	deleted, err := r.backend.DeletePost(ctx, id, token)
	if err = r.done("PostsRepository.DeletePost", start, err, zap.String("id", id)); err != nil {
		return models.Post{}, err
	}
	r.invalidate(ctx, id)
	return deleted, nil
}

func (r *PostsRepository) invalidate(ctx context.Context, id string) {
	r.cache.InvalidatePrefix(ctx, postListCachePrefix)
	r.cache.InvalidatePrefix(ctx, postDetailCachePrefix+id)
}
