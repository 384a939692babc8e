package memory

import (
	"context"
	"sync"
	"time"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/internal/reaction"
)

type reactionKey struct {
	author uint
	target model.Target
}

// Store - in-memory реализация хранилищ постов, комментариев и реакций.
// Один мьютекс на всё хранилище: изменение счётчиков и журнала реакций сериализуется им.
type Store struct {
	mu        sync.Mutex
	posts     map[uint]*model.Post
	comments  map[uint]*model.Comment
	reactions map[uint]*model.Reaction
	byAuthor  map[reactionKey]uint // (автор, цель) -> id реакции, аналог уникального индекса

	nextPostID     uint
	nextCommentID  uint
	nextReactionID uint

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		posts:          make(map[uint]*model.Post),
		comments:       make(map[uint]*model.Comment),
		reactions:      make(map[uint]*model.Reaction),
		byAuthor:       make(map[reactionKey]uint),
		nextPostID:     1,
		nextCommentID:  1,
		nextReactionID: 1,
		now:            time.Now,
	}
}

// memoryTx накапливает функции отката; при ошибке они выполняются в обратном порядке
type memoryTx struct {
	s    *Store
	undo []func()
}

var (
	_ reaction.Tx              = (*memoryTx)(nil)
	_ reaction.ReactionStorage = (*Store)(nil)
)

func (s *Store) Atomic(ctx context.Context, fn func(tx reaction.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{s: s}
	if err := fn(tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}

func (tx *memoryTx) onRollback(f func()) {
	tx.undo = append(tx.undo, f)
}

func copyPost(p *model.Post) *model.Post {
	cp := *p
	return &cp
}

func copyComment(c *model.Comment) *model.Comment {
	cp := *c
	if c.ParentID != nil {
		parentID := *c.ParentID
		cp.ParentID = &parentID
	}
	return &cp
}

func copyReaction(r *model.Reaction) *model.Reaction {
	cp := *r
	return &cp
}
