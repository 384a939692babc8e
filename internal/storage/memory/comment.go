package memory

import (
	"context"
	"sort"

	"github.com/VitaminP8/threadly/internal/model"
)

func (s *Store) InsertComment(ctx context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[comment.PostID]; !exists {
		return model.NotFound("post", comment.PostID)
	}
	if comment.ParentID != nil {
		parent, exists := s.comments[*comment.ParentID]
		if !exists {
			return model.NotFound("comment", *comment.ParentID)
		}
		if parent.PostID != comment.PostID {
			return model.Invalid("parent_id", "parent comment belongs to a different post")
		}
	}

	now := s.now()
	comment.ID = s.nextCommentID
	s.nextCommentID++
	comment.Upvotes, comment.Downvotes = 0, 0
	comment.CreatedAt, comment.UpdatedAt = now, now

	s.comments[comment.ID] = copyComment(comment)
	return nil
}

func (s *Store) GetCommentByID(ctx context.Context, id uint) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.comments[id]
	if !exists {
		return nil, model.NotFound("comment", id)
	}
	return copyComment(c), nil
}

func (s *Store) GetComments(ctx context.Context, postID uint, limit, offset int) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[postID]; !exists {
		return nil, model.NotFound("post", postID)
	}

	var roots []*model.Comment
	for _, c := range s.comments {
		if c.PostID == postID && c.ParentID == nil {
			roots = append(roots, copyComment(c))
		}
	}
	sortByCreation(roots)

	return paginate(roots, limit, offset), nil
}

func (s *Store) GetReplies(ctx context.Context, parentID uint) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comments[parentID]; !exists {
		return nil, model.NotFound("comment", parentID)
	}

	replies := []*model.Comment{}
	for _, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			replies = append(replies, copyComment(c))
		}
	}
	sortByCreation(replies)
	return replies, nil
}

func (s *Store) UpdateComment(ctx context.Context, id uint, content string) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.comments[id]
	if !exists {
		return nil, model.NotFound("comment", id)
	}
	c.Content = content
	c.UpdatedAt = s.now()
	return copyComment(c), nil
}

func (s *Store) DeleteCommentByID(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comments[id]; !exists {
		return model.NotFound("comment", id)
	}

	// собираем поддерево в ширину
	subtree := []uint{id}
	for i := 0; i < len(subtree); i++ {
		for _, c := range s.comments {
			if c.ParentID != nil && *c.ParentID == subtree[i] {
				subtree = append(subtree, c.ID)
			}
		}
	}

	for _, cid := range subtree {
		s.dropReactionsOn(model.CommentTarget(cid))
		delete(s.comments, cid)
	}
	return nil
}

func (s *Store) CountComments(ctx context.Context, postID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[postID]; !exists {
		return 0, model.NotFound("post", postID)
	}
	n := 0
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountReplies(ctx context.Context, parentID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comments[parentID]; !exists {
		return 0, model.NotFound("comment", parentID)
	}
	n := 0
	for _, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

// сортировка по CreatedAt (и по ID в случае одинакового времени создания)
func sortByCreation(comments []*model.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}
