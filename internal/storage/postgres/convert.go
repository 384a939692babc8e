package postgres

import (
	"strings"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/models"
	"github.com/jinzhu/gorm"
)

func toPost(p *models.Post) *model.Post {
	return &model.Post{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.UserID,
		Upvotes:   p.Upvotes,
		Downvotes: p.Downvotes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toComment(c *models.Comment) *model.Comment {
	result := &model.Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		AuthorID:  c.UserID,
		Depth:     c.Depth,
		MaxDepth:  c.MaxDepth,
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.ParentID != nil {
		pid := *c.ParentID
		result.ParentID = &pid
	}
	return result
}

func toReaction(r *models.Reaction) (*model.Reaction, error) {
	target, err := model.NewTarget(model.TargetKind(r.TargetKind), r.TargetID)
	if err != nil {
		return nil, err
	}
	return &model.Reaction{
		ID:        r.ID,
		AuthorID:  r.UserID,
		Target:    target,
		Polarity:  model.Polarity(r.Polarity),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// notFoundOr переводит gorm.ErrRecordNotFound в доменную ошибку
func notFoundOr(err error, resource string, id any) error {
	if gorm.IsRecordNotFoundError(err) {
		return model.NotFound(resource, id)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") || // postgres
		strings.Contains(msg, "23505")
}

// forUpdate блокирует читаемые строки до конца транзакции там, где диалект это поддерживает
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialect().GetName() == "postgres" {
		return db.Set("gorm:query_option", "FOR UPDATE")
	}
	return db
}
