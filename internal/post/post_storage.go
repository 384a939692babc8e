package post

import (
	"context"

	"github.com/VitaminP8/threadly/internal/model"
)

type PostStorage interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id uint) (*model.Post, error)
	GetPosts(ctx context.Context, limit, offset int) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id uint, title, content string) (*model.Post, error)
	// DeletePostByID удаляет пост вместе с комментариями и всеми реакциями на них
	DeletePostByID(ctx context.Context, id uint) error
}
