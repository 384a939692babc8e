package memory

import (
	"context"

	"github.com/VitaminP8/threadly/internal/model"
)

// counters возвращает указатели на счётчики цели и пост, к которому она относится
func (s *Store) counters(target model.Target) (up, down *int, postID uint, err error) {
	if err := target.Validate(); err != nil {
		return nil, nil, 0, err
	}
	switch target.Kind() {
	case model.KindPost:
		p, ok := s.posts[target.ID()]
		if !ok {
			return nil, nil, 0, model.NotFound("post", target.ID())
		}
		return &p.Upvotes, &p.Downvotes, p.ID, nil
	default:
		c, ok := s.comments[target.ID()]
		if !ok {
			return nil, nil, 0, model.NotFound("comment", target.ID())
		}
		return &c.Upvotes, &c.Downvotes, c.PostID, nil
	}
}

func (s *Store) tally(target model.Target) (model.Tally, error) {
	up, down, postID, err := s.counters(target)
	if err != nil {
		return model.Tally{}, err
	}
	return model.Tally{Target: target, PostID: postID, Upvotes: *up, Downvotes: *down}, nil
}

// adjust меняет счётчик без блокировки; вызывающий держит s.mu.
// Возвращает функцию, восстанавливающую прежнее значение.
func (s *Store) adjust(target model.Target, polarity model.Polarity, delta int) (model.Tally, func(), error) {
	if !polarity.Valid() {
		return model.Tally{}, nil, model.Invalid("polarity", "unknown polarity")
	}
	if delta != 1 && delta != -1 {
		return model.Tally{}, nil, model.Invalid("delta", "delta must be +1 or -1")
	}

	up, down, _, err := s.counters(target)
	if err != nil {
		return model.Tally{}, nil, err
	}

	counter := up
	if polarity == model.Down {
		counter = down
	}
	old := *counter
	*counter = max(old+delta, 0)

	t, _ := s.tally(target)
	return t, func() { *counter = old }, nil
}

func (s *Store) lookupTarget(id uint) (model.Target, error) {
	if _, ok := s.posts[id]; ok {
		return model.PostTarget(id), nil
	}
	if _, ok := s.comments[id]; ok {
		return model.CommentTarget(id), nil
	}
	return model.Target{}, model.NotFound("target", id)
}

func (s *Store) AdjustTally(ctx context.Context, target model.Target, polarity model.Polarity, delta int) (model.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, _, err := s.adjust(target, polarity, delta)
	return t, err
}

func (s *Store) GetTally(ctx context.Context, target model.Target) (model.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally(target)
}

func (s *Store) LookupTarget(ctx context.Context, id uint) (model.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupTarget(id)
}

func (tx *memoryTx) AdjustTally(ctx context.Context, target model.Target, polarity model.Polarity, delta int) (model.Tally, error) {
	t, restore, err := tx.s.adjust(target, polarity, delta)
	if err != nil {
		return model.Tally{}, err
	}
	tx.onRollback(restore)
	return t, nil
}

func (tx *memoryTx) GetTally(ctx context.Context, target model.Target) (model.Tally, error) {
	return tx.s.tally(target)
}

func (tx *memoryTx) LookupTarget(ctx context.Context, id uint) (model.Target, error) {
	return tx.s.lookupTarget(id)
}
