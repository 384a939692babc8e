package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/models"
	"github.com/jinzhu/gorm"
)

type CommentPostgresStorage struct {
	db *gorm.DB
}

func NewCommentPostgresStorage(db *gorm.DB) *CommentPostgresStorage {
	return &CommentPostgresStorage{db: db}
}

func (s *CommentPostgresStorage) InsertComment(ctx context.Context, comment *model.Comment) error {
	var post models.Post
	err := s.db.First(&post, comment.PostID).Error
	if err != nil {
		return fmt.Errorf("could not create comment: %w", notFoundOr(err, "post", comment.PostID))
	}

	if comment.ParentID != nil {
		var parent models.Comment
		err = s.db.First(&parent, *comment.ParentID).Error
		if err != nil {
			return fmt.Errorf("could not create comment: %w", notFoundOr(err, "comment", *comment.ParentID))
		}
		if parent.PostID != comment.PostID {
			return model.Invalid("parent_id", "parent comment belongs to a different post")
		}
	}

	rec := &models.Comment{
		Content:  comment.Content,
		PostID:   comment.PostID,
		UserID:   comment.AuthorID,
		ParentID: comment.ParentID,
		Depth:    comment.Depth,
		MaxDepth: comment.MaxDepth,
	}
	err = s.db.Create(rec).Error
	if err != nil {
		return fmt.Errorf("could not create comment: %w", err)
	}

	*comment = *toComment(rec)
	return nil
}

func (s *CommentPostgresStorage) GetCommentByID(ctx context.Context, id uint) (*model.Comment, error) {
	var rec models.Comment
	err := s.db.First(&rec, id).Error
	if err != nil {
		return nil, fmt.Errorf("could not get comment: %w", notFoundOr(err, "comment", id))
	}
	return toComment(&rec), nil
}

func (s *CommentPostgresStorage) GetComments(ctx context.Context, postID uint, limit, offset int) ([]*model.Comment, error) {
	var post models.Post
	err := s.db.First(&post, postID).Error
	if err != nil {
		return nil, fmt.Errorf("could not get post: %w", notFoundOr(err, "post", postID))
	}

	query := s.db.Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at asc, id asc").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var roots []models.Comment
	err = query.Find(&roots).Error
	if err != nil {
		return nil, fmt.Errorf("could not get root comments: %w", err)
	}
	return toComments(roots), nil
}

func (s *CommentPostgresStorage) GetReplies(ctx context.Context, parentID uint) ([]*model.Comment, error) {
	var parent models.Comment
	err := s.db.First(&parent, parentID).Error
	if err != nil {
		return nil, fmt.Errorf("could not get replies: %w", notFoundOr(err, "comment", parentID))
	}

	var children []models.Comment
	err = s.db.Where("parent_id = ?", parentID).Order("created_at asc, id asc").Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("could not get replies: %w", err)
	}
	return toComments(children), nil
}

func (s *CommentPostgresStorage) UpdateComment(ctx context.Context, id uint, content string) (*model.Comment, error) {
	var rec models.Comment
	err := s.db.First(&rec, id).Error
	if err != nil {
		return nil, fmt.Errorf("could not update comment: %w", notFoundOr(err, "comment", id))
	}

	err = s.db.Model(&rec).Updates(map[string]interface{}{"content": content}).Error
	if err != nil {
		return nil, fmt.Errorf("could not update comment: %w", err)
	}
	return toComment(&rec), nil
}

func (s *CommentPostgresStorage) DeleteCommentByID(ctx context.Context, id uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("could not begin transaction: %w", tx.Error)
	}

	err := deleteCommentTree(tx, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("could not delete comment: %w", err)
	}
	return tx.Commit().Error
}

func deleteCommentTree(tx *gorm.DB, id uint) error {
	var rec models.Comment
	err := tx.First(&rec, id).Error
	if err != nil {
		return notFoundOr(err, "comment", id)
	}

	// собираем поддерево по уровням
	subtree := []uint{id}
	level := []uint{id}
	for len(level) > 0 {
		var next []uint
		err = tx.Model(&models.Comment{}).Where("parent_id IN (?)", level).Pluck("id", &next).Error
		if err != nil {
			return err
		}
		subtree = append(subtree, next...)
		level = next
	}

	err = deleteReactionsOn(tx, model.KindComment, subtree)
	if err != nil {
		return err
	}
	return tx.Where("id IN (?)", subtree).Delete(&models.Comment{}).Error
}

func (s *CommentPostgresStorage) CountComments(ctx context.Context, postID uint) (int, error) {
	var post models.Post
	err := s.db.First(&post, postID).Error
	if err != nil {
		return 0, fmt.Errorf("could not count comments: %w", notFoundOr(err, "post", postID))
	}

	var n int
	err = s.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("could not count comments: %w", err)
	}
	return n, nil
}

func (s *CommentPostgresStorage) CountReplies(ctx context.Context, parentID uint) (int, error) {
	var parent models.Comment
	err := s.db.First(&parent, parentID).Error
	if err != nil {
		return 0, fmt.Errorf("could not count replies: %w", notFoundOr(err, "comment", parentID))
	}

	var n int
	err = s.db.Model(&models.Comment{}).Where("parent_id = ?", parentID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("could not count replies: %w", err)
	}
	return n, nil
}

func toComments(recs []models.Comment) []*model.Comment {
	results := make([]*model.Comment, 0, len(recs))
	for i := range recs {
		results = append(results, toComment(&recs[i]))
	}
	return results
}
