// Package gormstore keeps posts and comments in a SQL database through gorm.
//
// On Postgres every write runs in a transaction that carries the caller's
// token claims and switches to the configured role, so the row-level
// policies installed by the migrations decide what the caller may touch.
// Other dialects have no row-level security and scope writes to rows whose
// user_id equals the token subject.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/miniblog/auth"
	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/repositories"
)

const DefaultRole = "authenticated"

// Store implements repositories.PostBackend and repositories.CommentBackend.
type Store struct {
	db   *gorm.DB
	role string
}

var (
	_ repositories.PostBackend    = (*Store)(nil)
	_ repositories.CommentBackend = (*Store)(nil)
)

// New wraps db. role is the database role writes switch to on Postgres.
func New(db *gorm.DB, role string) *Store {
	if role == "" {
		role = DefaultRole
	}
	return &Store{db: db, role: role}
}

// AutoMigrate creates the tables for dialects the SQL migrations do not cover.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Post{}, &models.Comment{})
}

func (s *Store) rowLevelSecurity() bool {
	return s.db.Dialector.Name() == "postgres"
}

// write runs fn in a transaction on behalf of the token's subject. owner is
// empty when the database enforces ownership itself.
func (s *Store) write(ctx context.Context, token string, fn func(tx *gorm.DB, sub, owner string) error) error {
	sub, claims, err := auth.SubjectOf(token)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !s.rowLevelSecurity() {
			return fn(tx, sub, sub)
		}
		raw, err := json.Marshal(claims)
		if err != nil {
			return fmt.Errorf("encode claims: %w", err)
		}
		if err := tx.Exec("SELECT set_config('request.jwt.claims', ?, true)", string(raw)).Error; err != nil {
			return fmt.Errorf("set request claims: %w", err)
		}
		if err := tx.Exec("SET LOCAL ROLE " + quoteIdent(s.role)).Error; err != nil {
			return fmt.Errorf("set role %s: %w", s.role, err)
		}
		return fn(tx, sub, "")
	})
}

func scoped(q *gorm.DB, owner string) *gorm.DB {
	if owner == "" {
		return q
	}
	return q.Where("user_id = ?", owner)
}

// notFound maps gorm's missing row error onto the repositories contract.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}

// affected reports ErrNotFound when a write left no row changed while the
// database enforces ownership. Row-level policies drop rows the caller does
// not own without raising an error. Scoped writes already matched an owned
// row, and MySQL reports zero for updates that change nothing.
func affected(res *gorm.DB, owner string) error {
	if res.Error != nil {
		return res.Error
	}
	if owner == "" && res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func likePattern(term string) string {
	r := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
