package comment

import (
	"context"

	"github.com/VitaminP8/threadly/internal/model"
)

type CommentStorage interface {
	// InsertComment сохраняет комментарий с уже вычисленными Depth/MaxDepth
	InsertComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*model.Comment, error)
	// GetComments - корневые комментарии поста по возрастанию времени создания
	GetComments(ctx context.Context, postID uint, limit, offset int) ([]*model.Comment, error)
	GetReplies(ctx context.Context, parentID uint) ([]*model.Comment, error)
	UpdateComment(ctx context.Context, id uint, content string) (*model.Comment, error)
	// DeleteCommentByID удаляет всё поддерево ответов и реакции на него
	DeleteCommentByID(ctx context.Context, id uint) error
	CountComments(ctx context.Context, postID uint) (int, error)
	CountReplies(ctx context.Context, parentID uint) (int, error)
}
