package memory

import (
	"context"
	"sort"

	"github.com/VitaminP8/threadly/internal/model"
)

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	post.ID = s.nextPostID
	s.nextPostID++
	post.Upvotes, post.Downvotes = 0, 0
	post.CreatedAt, post.UpdatedAt = now, now

	s.posts[post.ID] = copyPost(post)
	return nil
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, model.NotFound("post", id)
	}
	return copyPost(post), nil
}

// GetPosts отдаёт посты от новых к старым
func (s *Store) GetPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]*model.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, copyPost(post))
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID > posts[j].ID
	})

	return paginate(posts, limit, offset), nil
}

func (s *Store) UpdatePost(ctx context.Context, id uint, title, content string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, model.NotFound("post", id)
	}
	post.Title = title
	post.Content = content
	post.UpdatedAt = s.now()
	return copyPost(post), nil
}

func (s *Store) DeletePostByID(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; !exists {
		return model.NotFound("post", id)
	}

	for _, c := range s.comments {
		if c.PostID == id {
			s.dropReactionsOn(model.CommentTarget(c.ID))
			delete(s.comments, c.ID)
		}
	}
	s.dropReactionsOn(model.PostTarget(id))
	delete(s.posts, id)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
