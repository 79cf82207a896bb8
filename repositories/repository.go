// Package repositories maps post and comment operations onto a storage backend,
// logging every failure with the operation that produced it.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/miniblog/metrics"
	"github.com/cppla/miniblog/models"
)

var (
	// ErrNotFound means the targeted row is absent or not visible to the caller.
	ErrNotFound = errors.New("record not found")
	// ErrStorage wraps every other backend failure.
	ErrStorage = errors.New("storage failure")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListParams selects one page of posts.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

// Normalize clamps the page to >= 1 and the page size to 1..MaxPageSize.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Range returns the inclusive zero-based row range of the page.
func (p ListParams) Range() (from, to int) {
	from = (p.Page - 1) * p.PageSize
	return from, from + p.PageSize - 1
}

// PostBackend is the storage the posts repository delegates to. Backends
// return ErrNotFound when an operation matched no row.
type PostBackend interface {
	ListPosts(ctx context.Context, params ListParams) ([]models.Post, error)
	CountPosts(ctx context.Context, search string) (int64, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
	CreatePost(ctx context.Context, post models.Post, token string) (models.Post, error)
	UpdatePost(ctx context.Context, id string, post models.Post, token string) (models.Post, error)
	DeletePost(ctx context.Context, id string, token string) (models.Post, error)
}

// CommentBackend is the storage the comments repository delegates to.
type CommentBackend interface {
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment models.Comment, token string) (models.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID string, comment models.Comment, token string) (models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string, token string) (models.Comment, error)
}

// Cache is an optional best-effort read-through cache.
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration)
	InvalidatePrefix(ctx context.Context, prefix string)
}

type nopCache struct{}

func (nopCache) GetBytes(context.Context, string) ([]byte, bool) { return nil, false }
func (nopCache) SetJSON(context.Context, string, interface{}, time.Duration) {}
func (nopCache) InvalidatePrefix(context.Context, string) {}

// tracker records the outcome of one backend call.
type tracker struct {
	log     *zap.Logger
	metrics metrics.Provider
}

// done logs and counts the call and converts err into the package's error contract.
func (t tracker) done(op string, start time.Time, err error, fields ...zap.Field) error {
	t.metrics.ObserveStorageOperation(op, err == nil || errors.Is(err, ErrNotFound), time.Since(start))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		t.log.Debug("Not found at "+op, fields...)
		return ErrNotFound
	default:
		t.log.Error("Error at "+op, append(fields, zap.Error(err))...)
		return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
	}
}

func newTracker(log *zap.Logger, m metrics.Provider) tracker {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.Noop()
	}
	return tracker{log: log, metrics: m}
}
