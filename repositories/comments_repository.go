package repositories

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/miniblog/metrics"
	"github.com/cppla/miniblog/models"
)

// CommentsRepository exposes CRUD operations on the comments of a post.
type CommentsRepository struct {
	backend CommentBackend
	tracker
}

func NewCommentsRepository(backend CommentBackend, log *zap.Logger, m metrics.Provider) *CommentsRepository {
	return &CommentsRepository{backend: backend, tracker: newTracker(log, m)}
}

// GetCommentsByPostID lists the comments of a post, oldest first.
func (r *CommentsRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	start := time.Now()
	comments, err := r.backend.ListComments(ctx, postID)
	if err = r.done("CommentsRepository.GetCommentsByPostID", start, err, zap.String("post_id", postID)); err != nil {
		return []models.Comment{}, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (r *CommentsRepository) CreateComment(ctx context.Context, comment models.Comment, token string) (models.Comment, error) {
	start := time.Now()
	created, err := r.backend.CreateComment(ctx, comment, token)
	if err = r.done("CommentsRepository.CreateComment", start, err,
		zap.String("post_id", comment.PostID), zap.String("user_id", comment.UserID)); err != nil {
		return models.Comment{}, err
	}
	return created, nil
}

func (r *CommentsRepository) UpdateComment(ctx context.Context, postID, commentID string, comment models.Comment, token string) (models.Comment, error) {
	start := time.Now()
	updated, err := r.backend.UpdateComment(ctx, postID, commentID, comment, token)
	if err = r.done("CommentsRepository.UpdateComment", start, err,
		zap.String("post_id", postID), zap.String("comment_id", commentID)); err != nil {
		return models.Comment{}, err
	}
	return updated, nil
}

func (r *CommentsRepository) DeleteComment(ctx context.Context, postID, commentID string, token string) (models.Comment, error) {
	start := time.Now()
	deleted, err := r.backend.DeleteComment(ctx, postID, commentID, token)
	if err = r.done("CommentsRepository.DeleteComment", start, err,
		zap.String("post_id", postID), zap.String("comment_id", commentID)); err != nil {
		return models.Comment{}, err
	}
	return deleted, nil
}
