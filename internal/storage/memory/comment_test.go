package memory

import (
	"context"
	"testing"
	"time"

	"github.com/VitaminP8/threadly/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertComment(t *testing.T, s *Store, postID uint, parent *model.Comment) *model.Comment {
	t.Helper()
	c := &model.Comment{PostID: postID, Content: "c", AuthorID: 1, MaxDepth: 2}
	if parent != nil {
		id := parent.ID
		c.ParentID = &id
		c.Depth = parent.Depth + 1
	}
	require.NoError(t, s.InsertComment(context.Background(), c))
	return c
}

func TestStore_InsertComment(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := createPost(t, s, "post")
	other := createPost(t, s, "other")

	root := insertComment(t, s, p.ID, nil)
	assert.NotZero(t, root.ID)

	t.Run("Missing post", func(t *testing.T) {
		err := s.InsertComment(ctx, &model.Comment{PostID: 999, Content: "c"})
		assert.True(t, model.IsNotFound(err))
	})

	t.Run("Missing parent", func(t *testing.T) {
		missing := uint(999)
		err := s.InsertComment(ctx, &model.Comment{PostID: p.ID, ParentID: &missing, Content: "c"})
		assert.True(t, model.IsNotFound(err))
	})

	t.Run("Parent from another post", func(t *testing.T) {
		id := root.ID
		err := s.InsertComment(ctx, &model.Comment{PostID: other.ID, ParentID: &id, Content: "c"})
		assert.True(t, model.IsValidation(err))
	})
}

func TestStore_CommentQueries(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	p := createPost(t, s, "post")
	r1 := insertComment(t, s, p.ID, nil)
	r2 := insertComment(t, s, p.ID, nil)
	a := insertComment(t, s, p.ID, r1)
	b := insertComment(t, s, p.ID, r1)
	deep := insertComment(t, s, p.ID, a)

	roots, err := s.GetComments(ctx, p.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, r1.ID, roots[0].ID)
	assert.Equal(t, r2.ID, roots[1].ID)

	roots, err = s.GetComments(ctx, p.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, r2.ID, roots[0].ID)

	replies, err := s.GetReplies(ctx, r1.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, a.ID, replies[0].ID)
	assert.Equal(t, b.ID, replies[1].ID)

	n, err := s.CountComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = s.CountReplies(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("Delete removes the subtree only", func(t *testing.T) {
		require.NoError(t, s.DeleteCommentByID(ctx, r1.ID))

		for _, id := range []uint{r1.ID, a.ID, b.ID, deep.ID} {
			_, err := s.GetCommentByID(ctx, id)
			assert.True(t, model.IsNotFound(err))
		}
		_, err := s.GetCommentByID(ctx, r2.ID)
		assert.NoError(t, err)
	})

	t.Run("Unknown ids", func(t *testing.T) {
		_, err := s.GetComments(ctx, 999, 10, 0)
		assert.True(t, model.IsNotFound(err))
		_, err = s.GetReplies(ctx, 999)
		assert.True(t, model.IsNotFound(err))
		_, err = s.UpdateComment(ctx, 999, "x")
		assert.True(t, model.IsNotFound(err))
	})
}
