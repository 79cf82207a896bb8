package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/miniblog/auth"
	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/repositories"
	"github.com/cppla/miniblog/schemas"
	"github.com/cppla/miniblog/utils"
)

// CommentStore is the comments repository as seen by the HTTP layer.
type CommentStore interface {
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment models.Comment, token string) (models.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID string, comment models.Comment, token string) (models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string, token string) (models.Comment, error)
}

type CommentController struct {
	comments CommentStore
	log      *zap.Logger
}

func NewCommentController(comments CommentStore, log *zap.Logger) *CommentController {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommentController{comments: comments, log: log}
}

// ListComments returns the comments of a post, oldest first. A post id the
// store cannot resolve yields an empty list.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID, ok := requireParam(ctx, "id", "The Post id is missing")
	if !ok {
		return
	}

	comments, err := c.comments.GetCommentsByPostID(ctx.Request.Context(), postID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.JSON(ctx, http.StatusOK, []models.Comment{})
	case err != nil:
		c.log.Error("Error fetching comments for a Post", zap.String("post_id", postID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while retrieving comments.")
	default:
		utils.JSON(ctx, http.StatusOK, comments)
	}
}

func (c *CommentController) CreateComment(ctx *gin.Context) {
	postID, ok := requireParam(ctx, "id", "The Post id is missing")
	if !ok {
		return
	}
	identity, token, ok := requireCaller(ctx)
	if !ok {
		return
	}

	comment, ok := c.parse(ctx, postID, identity)
	if !ok {
		return
	}

	created, err := c.comments.CreateComment(ctx.Request.Context(), comment, token)
	if err != nil {
		c.log.Error("Error creating comment", zap.String("post_id", postID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while creating the comment.")
		return
	}
	utils.JSON(ctx, http.StatusCreated, created)
}

func (c *CommentController) UpdateComment(ctx *gin.Context) {
	postID, ok := requireParam(ctx, "id", "The Post id is missing")
	if !ok {
		return
	}
	commentID, ok := requireParam(ctx, "commentId", "The Comment id is missing")
	if !ok {
		return
	}
	identity, token, ok := requireCaller(ctx)
	if !ok {
		return
	}

	comment, ok := c.parse(ctx, postID, identity)
	if !ok {
		return
	}

	updated, err := c.comments.UpdateComment(ctx.Request.Context(), postID, commentID, comment, token)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "Comment not found")
	case err != nil:
		c.log.Error("Error updating comment", zap.String("comment_id", commentID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while updating the comment.")
	default:
		utils.JSON(ctx, http.StatusOK, updated)
	}
}

func (c *CommentController) DeleteComment(ctx *gin.Context) {
	postID, ok := requireParam(ctx, "id", "The Post id is missing")
	if !ok {
		return
	}
	commentID, ok := requireParam(ctx, "commentId", "The Comment id is missing")
	if !ok {
		return
	}
	_, token, ok := requireCaller(ctx)
	if !ok {
		return
	}

	_, err := c.comments.DeleteComment(ctx.Request.Context(), postID, commentID, token)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "Comment not found")
	case err != nil:
		c.log.Error("Error deleting comment", zap.String("comment_id", commentID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while deleting the comment.")
	default:
		utils.Message(ctx, http.StatusOK, "Comment deleted successfully")
	}
}

// parse binds and validates a comment body. The post id comes from the path
// and the owner from the verified identity; content must be non-empty.
func (c *CommentController) parse(ctx *gin.Context, postID string, identity auth.Identity) (models.Comment, bool) {
	var in schemas.CommentInput
	if !bindBody(ctx, &in) {
		return models.Comment{}, false
	}
	in.ID = ""
	in.PostID = postID
	in.UserID = identity.ID
	if identity.Email != "" {
		in.Email = identity.Email
	}

	comment, err := schemas.ParseComment(in)
	missingContent := strings.TrimSpace(comment.Content) == ""

	var verr *schemas.ValidationError
	switch {
	case errors.As(err, &verr):
		if in.Content == nil || strings.TrimSpace(*in.Content) == "" {
			verr.Add("content", "Content is required")
		}
		utils.ValidationFailed(ctx, verr)
		return models.Comment{}, false
	case err != nil:
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return models.Comment{}, false
	case missingContent:
		utils.ValidationFailed(ctx, (&schemas.ValidationError{}).Add("content", "Content is required"))
		return models.Comment{}, false
	}
	return comment, true
}
