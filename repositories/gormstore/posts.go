package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/repositories"
)

func (s *Store) searchPosts(ctx context.Context, search string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Post{})
	if search != "" {
		p := likePattern(search)
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '!' OR LOWER(content) LIKE ? ESCAPE '!'`, p, p)
	}
	return q
}

func (s *Store) ListPosts(ctx context.Context, params repositories.ListParams) ([]models.Post, error) {
	from, _ := params.Range()
	posts := []models.Post{}
	err := s.searchPosts(ctx, params.Search).
		Order("created_at DESC").
		Offset(from).
		Limit(params.PageSize).
		Find(&posts).Error
	return posts, err
}

func (s *Store) CountPosts(ctx context.Context, search string) (int64, error) {
	var total int64
	err := s.searchPosts(ctx, search).Count(&total).Error
	return total, err
}

func (s *Store) GetPost(ctx context.Context, id string) (models.Post, error) {
	var post models.Post
	if !validID(id) {
		return post, repositories.ErrNotFound
	}
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	return post, notFound(err)
}

func (s *Store) CreatePost(ctx context.Context, post models.Post, token string) (models.Post, error) {
	err := s.write(ctx, token, func(tx *gorm.DB, sub, _ string) error {
		if post.UserID == "" {
			post.UserID = sub
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, post models.Post, token string) (models.Post, error) {
	if !validID(id) {
		return models.Post{}, repositories.ErrNotFound
	}
	var updated models.Post
	err := s.write(ctx, token, func(tx *gorm.DB, _, owner string) error {
		if err := scoped(tx.Where("id = ?", id), owner).First(&updated).Error; err != nil {
			return notFound(err)
		}
		changes := map[string]interface{}{
			"title":          post.Title,
			"content":        post.Content,
			"hero_image_url": post.HeroImageURL,
		}
		if post.Email != "" {
			changes["email"] = post.Email
		}
		if err := affected(tx.Model(&updated).Updates(changes), owner); err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return models.Post{}, err
	}
	return updated, nil
}

func (s *Store) DeletePost(ctx context.Context, id string, token string) (models.Post, error) {
	if !validID(id) {
		return models.Post{}, repositories.ErrNotFound
	}
	var deleted models.Post
	err := s.write(ctx, token, func(tx *gorm.DB, _, owner string) error {
		if err := scoped(tx.Where("id = ?", id), owner).First(&deleted).Error; err != nil {
			return notFound(err)
		}
		return affected(tx.Delete(&deleted), owner)
	})
	if err != nil {
		return models.Post{}, err
	}
	return deleted, nil
}
