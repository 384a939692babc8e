package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/models"
	"github.com/jinzhu/gorm"
)

type PostPostgresStorage struct {
	db *gorm.DB
}

func NewPostPostgresStorage(db *gorm.DB) *PostPostgresStorage {
	return &PostPostgresStorage{db: db}
}

func (s *PostPostgresStorage) CreatePost(ctx context.Context, post *model.Post) error {
	rec := &models.Post{
		Title:   post.Title,
		Content: post.Content,
		UserID:  post.AuthorID,
	}

	err := s.db.Create(rec).Error
	if err != nil {
		return fmt.Errorf("could not create post: %w", err)
	}

	*post = *toPost(rec)
	return nil
}

func (s *PostPostgresStorage) GetPostByID(ctx context.Context, id uint) (*model.Post, error) {
	var rec models.Post
	err := s.db.First(&rec, id).Error
	if err != nil {
		return nil, fmt.Errorf("could not get post by id: %w", notFoundOr(err, "post", id))
	}
	return toPost(&rec), nil
}

func (s *PostPostgresStorage) GetPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	query := s.db.Order("id desc").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recs []models.Post
	err := query.Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("could not get posts: %w", err)
	}

	results := make([]*model.Post, 0, len(recs))
	for i := range recs {
		results = append(results, toPost(&recs[i]))
	}
	return results, nil
}

func (s *PostPostgresStorage) UpdatePost(ctx context.Context, id uint, title, content string) (*model.Post, error) {
	var rec models.Post
	err := s.db.First(&rec, id).Error
	if err != nil {
		return nil, fmt.Errorf("could not update post: %w", notFoundOr(err, "post", id))
	}

	err = s.db.Model(&rec).Updates(map[string]interface{}{
		"title":   title,
		"content": content,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("could not update post: %w", err)
	}
	return toPost(&rec), nil
}

func (s *PostPostgresStorage) DeletePostByID(ctx context.Context, id uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("could not begin transaction: %w", tx.Error)
	}

	err := deletePost(tx, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("could not delete post: %w", err)
	}
	return tx.Commit().Error
}

func deletePost(tx *gorm.DB, id uint) error {
	var rec models.Post
	err := tx.First(&rec, id).Error
	if err != nil {
		return notFoundOr(err, "post", id)
	}

	var commentIDs []uint
	err = tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error
	if err != nil {
		return err
	}

	err = deleteReactionsOn(tx, model.KindComment, commentIDs)
	if err != nil {
		return err
	}
	err = deleteReactionsOn(tx, model.KindPost, []uint{id})
	if err != nil {
		return err
	}

	err = tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error
	if err != nil {
		return err
	}
	return tx.Delete(&rec).Error
}

func deleteReactionsOn(tx *gorm.DB, kind model.TargetKind, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("target_kind = ? AND target_id IN (?)", string(kind), ids).
		Delete(&models.Reaction{}).Error
}
