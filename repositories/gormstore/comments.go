package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/repositories"
)

func (s *Store) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if !validID(postID) {
		return comments, nil
	}
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (s *Store) CreateComment(ctx context.Context, comment models.Comment, token string) (models.Comment, error) {
	err := s.write(ctx, token, func(tx *gorm.DB, sub, _ string) error {
		if comment.UserID == "" {
			comment.UserID = sub
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// findComment loads the comment addressed by both ids, visible to owner.
func findComment(tx *gorm.DB, postID, commentID, owner string, out *models.Comment) error {
	if !validID(postID) || !validID(commentID) {
		return repositories.ErrNotFound
	}
	q := tx.Where("id = ? AND post_id = ?", commentID, postID)
	return notFound(scoped(q, owner).First(out).Error)
}

func (s *Store) UpdateComment(ctx context.Context, postID, commentID string, comment models.Comment, token string) (models.Comment, error) {
	var updated models.Comment
	err := s.write(ctx, token, func(tx *gorm.DB, _, owner string) error {
		if err := findComment(tx, postID, commentID, owner, &updated); err != nil {
			return err
		}
		if err := affected(tx.Model(&updated).Update("content", comment.Content), owner); err != nil {
			return err
		}
		return tx.Where("id = ?", commentID).First(&updated).Error
	})
	if err != nil {
		return models.Comment{}, err
	}
	return updated, nil
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string, token string) (models.Comment, error) {
	var deleted models.Comment
	err := s.write(ctx, token, func(tx *gorm.DB, _, owner string) error {
		if err := findComment(tx, postID, commentID, owner, &deleted); err != nil {
			return err
		}
		return affected(tx.Delete(&deleted), owner)
	})
	if err != nil {
		return models.Comment{}, err
	}
	return deleted, nil
}
