package comment

import (
	"context"
	"fmt"
	"iter"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/internal/post"
	"github.com/VitaminP8/threadly/internal/subscription"
)

// AttachInput - данные нового комментария от вызывающей стороны
type AttachInput struct {
	AuthorID uint
	PostID   uint
	ParentID *uint
	Content  string
	// MaxDepth переопределяет потолок только для корневого комментария
	MaxDepth *int
}

// Tree - узел ленивого дерева ответов. Replies перечитывает хранилище при каждом обходе.
type Tree struct {
	Comment *model.Comment
	Replies iter.Seq2[*Tree, error]
}

// Builder назначает глубину комментариям и строит деревья ответов
type Builder struct {
	posts    post.PostStorage
	comments CommentStorage
	manager  subscription.Manager
	maxDepth int
	logger   *log.Logger
}

type Option func(*Builder)

func WithMaxDepth(n int) Option {
	return func(b *Builder) { b.maxDepth = n }
}

func WithManager(m subscription.Manager) Option {
	return func(b *Builder) { b.manager = m }
}

func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

func NewBuilder(posts post.PostStorage, comments CommentStorage, opts ...Option) *Builder {
	b := &Builder{
		posts:    posts,
		comments: comments,
		maxDepth: model.DefaultMaxDepth,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func validateContent(content string) error {
	n := utf8.RuneCountInString(content)
	if strings.TrimSpace(content) == "" || n > model.MaxBodyLength {
		return model.Invalid("content", "content is too long or empty")
	}
	return nil
}

// Attach проверяет и сохраняет комментарий.
// Ответ всегда попадает в пост родителя и наследует его max_depth;
// ответ глубже max_depth отклоняется.
func (b *Builder) Attach(ctx context.Context, in AttachInput) (*model.Comment, error) {
	err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	c := &model.Comment{
		AuthorID: in.AuthorID,
		Content:  in.Content,
	}

	if in.ParentID == nil {
		_, err = b.posts.GetPostByID(ctx, in.PostID)
		if err != nil {
			return nil, err
		}

		c.PostID = in.PostID
		c.Depth = 0
		c.MaxDepth = b.maxDepth
		if in.MaxDepth != nil {
			if *in.MaxDepth < 0 {
				return nil, model.Invalid("max_depth", "max_depth must not be negative")
			}
			c.MaxDepth = *in.MaxDepth
		}
	} else {
		parent, err := b.comments.GetCommentByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}

		parentID := parent.ID
		c.PostID = parent.PostID
		c.ParentID = &parentID
		c.Depth = parent.Depth + 1
		c.MaxDepth = parent.MaxDepth

		if c.Depth > c.MaxDepth {
			return nil, model.Invalid("parent_id", "max depth exceeded")
		}
	}

	err = b.comments.InsertComment(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("could not attach comment: %w", err)
	}

	if b.manager != nil {
		b.manager.Publish(c.PostID, model.Event{
			Kind:    model.EventCommentAttached,
			PostID:  c.PostID,
			Comment: c,
		})
	}
	return c, nil
}

// Edit меняет текст комментария
func (b *Builder) Edit(ctx context.Context, id uint, content string) (*model.Comment, error) {
	err := validateContent(content)
	if err != nil {
		return nil, err
	}
	return b.comments.UpdateComment(ctx, id, content)
}

// Remove удаляет комментарий вместе с поддеревом и возвращает удаленный корень
func (b *Builder) Remove(ctx context.Context, id uint) (*model.Comment, error) {
	c, err := b.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = b.comments.DeleteCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.logger.Printf("comment %d removed with its replies (post %d)", id, c.PostID)
	return c, nil
}

// RenderTree возвращает ответы на комментарий. Для комментария на потолке глубины
// (depth >= max_depth) последовательность пуста.
func (b *Builder) RenderTree(ctx context.Context, c *model.Comment) iter.Seq2[*Tree, error] {
	return func(yield func(*Tree, error) bool) {
		if !c.AcceptsReplies() {
			return
		}

		replies, err := b.comments.GetReplies(ctx, c.ID)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, reply := range replies {
			if reply.Depth != c.Depth+1 {
				b.logger.Printf("comment %d has depth %d under parent %d with depth %d, skipped",
					reply.ID, reply.Depth, c.ID, c.Depth)
				continue
			}
			if !yield(&Tree{Comment: reply, Replies: b.RenderTree(ctx, reply)}, nil) {
				return
			}
		}
	}
}

// RenderThread отдает корневые комментарии поста, каждый со своим деревом ответов
func (b *Builder) RenderThread(ctx context.Context, postID uint, limit, offset int) iter.Seq2[*Tree, error] {
	return func(yield func(*Tree, error) bool) {
		roots, err := b.comments.GetComments(ctx, postID, limit, offset)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, root := range roots {
			if !yield(&Tree{Comment: root, Replies: b.RenderTree(ctx, root)}, nil) {
				return
			}
		}
	}
}

// Subtree строит полное дерево под комментарием id
func (b *Builder) Subtree(ctx context.Context, id uint) (model.CommentNode, error) {
	c, err := b.comments.GetCommentByID(ctx, id)
	if err != nil {
		return model.CommentNode{}, err
	}

	replies, err := Collect(b.RenderTree(ctx, c))
	if err != nil {
		return model.CommentNode{}, err
	}
	return model.CommentNode{Comment: c, Replies: replies}, nil
}

// Collect материализует ленивое дерево в обычные вложенные узлы
func Collect(seq iter.Seq2[*Tree, error]) ([]model.CommentNode, error) {
	nodes := []model.CommentNode{}
	for tree, err := range seq {
		if err != nil {
			return nil, err
		}

		replies, err := Collect(tree.Replies)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, model.CommentNode{Comment: tree.Comment, Replies: replies})
	}
	return nodes, nil
}
