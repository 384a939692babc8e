package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/VitaminP8/threadly/internal/comment"
	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/internal/post"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultCacheSize = 500
	DefaultCacheTTL  = 30 * time.Second
)

// countItem - число комментариев поста и момент его устаревания
type countItem struct {
	count     int
	expiresAt time.Time
}

// Service отдает счётчики голосов и ответов для внешних вызывающих
type Service struct {
	posts    post.PostStorage
	comments comment.CommentStorage
	counts   *lru.Cache[uint, countItem]
	ttl      time.Duration
	now      func() time.Time
}

func NewService(posts post.PostStorage, comments comment.CommentStorage, size int, ttl time.Duration) (*Service, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	counts, err := lru.New[uint, countItem](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &Service{
		posts:    posts,
		comments: comments,
		counts:   counts,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func (s *Service) commentCount(ctx context.Context, postID uint) (int, error) {
	item, ok := s.counts.Get(postID)
	if ok && s.now().Before(item.expiresAt) {
		return item.count, nil
	}

	n, err := s.comments.CountComments(ctx, postID)
	if err != nil {
		return 0, err
	}
	s.counts.Add(postID, countItem{count: n, expiresAt: s.now().Add(s.ttl)})
	return n, nil
}

// Invalidate сбрасывает закешированное число комментариев поста
func (s *Service) Invalidate(postID uint) {
	s.counts.Remove(postID)
}

func (s *Service) summarize(ctx context.Context, p *model.Post) (model.PostSummary, error) {
	n, err := s.commentCount(ctx, p.ID)
	if err != nil {
		return model.PostSummary{}, err
	}

	return model.PostSummary{
		ID:           p.ID,
		Title:        p.Title,
		AuthorID:     p.AuthorID,
		CreatedAt:    p.CreatedAt,
		LikeCount:    p.Upvotes,
		DislikeCount: p.Downvotes,
		Score:        p.Upvotes - p.Downvotes,
		CommentCount: n,
	}, nil
}

func (s *Service) PostSummary(ctx context.Context, id uint) (model.PostSummary, error) {
	p, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return model.PostSummary{}, err
	}
	return s.summarize(ctx, p)
}

func (s *Service) ListPostSummaries(ctx context.Context, limit, offset int) ([]model.PostSummary, error) {
	posts, err := s.posts.GetPosts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.PostSummary, 0, len(posts))
	for _, p := range posts {
		summary, err := s.summarize(ctx, p)
		if model.IsNotFound(err) {
			// пост удалили между выборками
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// CommentSummary - счётчики комментария и число прямых ответов (без кеша)
func (s *Service) CommentSummary(ctx context.Context, id uint) (model.CommentSummary, error) {
	c, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return model.CommentSummary{}, err
	}

	n, err := s.comments.CountReplies(ctx, id)
	if err != nil {
		return model.CommentSummary{}, err
	}

	return model.CommentSummary{
		Comment:    c,
		Score:      c.Upvotes - c.Downvotes,
		ReplyCount: n,
	}, nil
}
