package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/repositories"
	"github.com/cppla/miniblog/schemas"
	"github.com/cppla/miniblog/utils"
)

// PostStore is the posts repository as seen by the HTTP layer.
type PostStore interface {
	GetAllPosts(ctx context.Context, params repositories.ListParams) (models.PostPage, error)
	GetPostByID(ctx context.Context, id string) (models.Post, error)
	CreatePost(ctx context.Context, post models.Post, token string) (models.Post, error)
	UpdatePost(ctx context.Context, id string, post models.Post, token string) (models.Post, error)
	DeletePost(ctx context.Context, id string, token string) (models.Post, error)
}

// PostController manages CRUD operations for posts.
type PostController struct {
	posts PostStore
	log   *zap.Logger
}

// NewPostController creates a new PostController instance.
func NewPostController(posts PostStore, log *zap.Logger) *PostController {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostController{posts: posts, log: log}
}

// ListPosts returns one page of posts, newest first, optionally filtered by search.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("pageSize"))
	params := repositories.ListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(ctx.Query("search")),
	}

	result, err := p.posts.GetAllPosts(ctx.Request.Context(), params)
	if err != nil {
		p.log.Error("Error fetching posts", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while retrieving posts.")
		return
	}
	utils.JSON(ctx, http.StatusOK, result)
}

// GetPost returns a single post.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := requireParam(ctx, "id", "The Post id is missing")
	if !ok {
		return
	}

	post, err := p.posts.GetPostByID(ctx.Request.Context(), id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "Post not found")
	case err != nil:
		p.log.Error("Error fetching post", zap.String("id", id), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while retrieving the post.")
	default:
		utils.JSON(ctx, http.StatusOK, post)
	}
}

// CreatePost stores a post owned by the authenticated caller.
func (p *PostController) CreatePost(ctx *gin.Context) {
	identity, token, ok := requireCaller(ctx)
	if !ok {
		return
	}

	var in schemas.PostInput
	if !bindBody(ctx, &in) {
		return
	}
	in.UserID = identity.ID

	post, err := schemas.ParsePost(in)
	if err != nil {
		if !writeValidation(ctx, err) {
			utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		}
		return
	}
	post.Email = identity.Email

	created, err := p.posts.CreatePost(ctx.Request.Context(), post, token)
	if err != nil {
		p.log.Error("Error creating post", zap.String("user_id", identity.ID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while creating the post.")
		return
	}
	utils.JSON(ctx, http.StatusCreated, created)
}

// UpdatePost replaces the editable fields of a post the caller owns.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := requireParam(ctx, "id", "The Post id is missing")
	if !ok {
		return
	}
	identity, token, ok := requireCaller(ctx)
	if !ok {
		return
	}

	var in schemas.PostInput
	if !bindBody(ctx, &in) {
		return
	}
	in.ID = ""
	in.UserID = identity.ID

	post, err := schemas.ParsePost(in)
	if err != nil {
		if !writeValidation(ctx, err) {
			utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		}
		return
	}
	post.Email = identity.Email

	updated, err := p.posts.UpdatePost(ctx.Request.Context(), id, post, token)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "Post not found")
	case err != nil:
		p.log.Error("Error updating post", zap.String("id", id), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while updating the post.")
	default:
		utils.JSON(ctx, http.StatusOK, updated)
	}
}

// DeletePost removes a post the caller owns.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := requireParam(ctx, "id", "The Post id is missing")
	if !ok {
		return
	}
	_, token, ok := requireCaller(ctx)
	if !ok {
		return
	}

	_, err := p.posts.DeletePost(ctx.Request.Context(), id, token)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "Post not found")
	case err != nil:
		p.log.Error("Error deleting post", zap.String("id", id), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "An error occurred while deleting the post.")
	default:
		utils.Message(ctx, http.StatusOK, "Post deleted successfully")
	}
}
