package memory

import (
	"context"
	"sort"

	"github.com/VitaminP8/threadly/internal/model"
)

func (tx *memoryTx) FindReaction(ctx context.Context, authorID uint, target model.Target) (*model.Reaction, error) {
	id, ok := tx.s.byAuthor[reactionKey{author: authorID, target: target}]
	if !ok {
		return nil, model.NotFound("reaction", target.String())
	}
	return copyReaction(tx.s.reactions[id]), nil
}

func (tx *memoryTx) GetReactionByID(ctx context.Context, id uint) (*model.Reaction, error) {
	r, ok := tx.s.reactions[id]
	if !ok {
		return nil, model.NotFound("reaction", id)
	}
	return copyReaction(r), nil
}

func (tx *memoryTx) InsertReaction(ctx context.Context, r *model.Reaction) error {
	s := tx.s
	key := reactionKey{author: r.AuthorID, target: r.Target}
	if _, exists := s.byAuthor[key]; exists {
		return model.Conflict("reaction by user %d on %s already exists", r.AuthorID, r.Target)
	}

	now := s.now()
	r.ID = s.nextReactionID
	s.nextReactionID++
	r.CreatedAt, r.UpdatedAt = now, now

	s.reactions[r.ID] = copyReaction(r)
	s.byAuthor[key] = r.ID

	id := r.ID
	tx.onRollback(func() {
		delete(s.reactions, id)
		delete(s.byAuthor, key)
	})
	return nil
}

func (tx *memoryTx) UpdatePolarity(ctx context.Context, id uint, polarity model.Polarity) (*model.Reaction, error) {
	r, ok := tx.s.reactions[id]
	if !ok {
		return nil, model.NotFound("reaction", id)
	}

	oldPolarity, oldUpdated := r.Polarity, r.UpdatedAt
	r.Polarity = polarity
	r.UpdatedAt = tx.s.now()
	tx.onRollback(func() {
		r.Polarity, r.UpdatedAt = oldPolarity, oldUpdated
	})
	return copyReaction(r), nil
}

func (tx *memoryTx) DeleteReactionByID(ctx context.Context, id uint) error {
	s := tx.s
	r, ok := s.reactions[id]
	if !ok {
		return model.NotFound("reaction", id)
	}

	key := reactionKey{author: r.AuthorID, target: r.Target}
	delete(s.reactions, id)
	delete(s.byAuthor, key)
	tx.onRollback(func() {
		s.reactions[id] = r
		s.byAuthor[key] = id
	})
	return nil
}

func (s *Store) GetReactionByID(ctx context.Context, id uint) (*model.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reactions[id]
	if !ok {
		return nil, model.NotFound("reaction", id)
	}
	return copyReaction(r), nil
}

func (s *Store) GetReactions(ctx context.Context, target model.Target) ([]*model.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.tally(target); err != nil {
		return nil, err
	}

	reactions := []*model.Reaction{}
	for _, r := range s.reactions {
		if r.Target == target {
			reactions = append(reactions, copyReaction(r))
		}
	}
	sort.Slice(reactions, func(i, j int) bool {
		return reactions[i].ID < reactions[j].ID
	})
	return reactions, nil
}

func (s *Store) RecountTallies(ctx context.Context) ([]model.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type counts struct{ up, down int }
	actual := make(map[model.Target]counts)
	for _, r := range s.reactions {
		c := actual[r.Target]
		if r.Polarity == model.Up {
			c.up++
		} else {
			c.down++
		}
		actual[r.Target] = c
	}

	var fixed []model.Tally
	repair := func(target model.Target, up, down *int, postID uint) {
		c := actual[target]
		if *up == c.up && *down == c.down {
			return
		}
		*up, *down = c.up, c.down
		fixed = append(fixed, model.Tally{Target: target, PostID: postID, Upvotes: c.up, Downvotes: c.down})
	}

	for _, p := range s.posts {
		repair(model.PostTarget(p.ID), &p.Upvotes, &p.Downvotes, p.ID)
	}
	for _, c := range s.comments {
		repair(model.CommentTarget(c.ID), &c.Upvotes, &c.Downvotes, c.PostID)
	}
	return fixed, nil
}

// dropReactionsOn удаляет реакции на цель; вызывающий держит s.mu
func (s *Store) dropReactionsOn(target model.Target) {
	for id, r := range s.reactions {
		if r.Target == target {
			delete(s.byAuthor, reactionKey{author: r.AuthorID, target: target})
			delete(s.reactions, id)
		}
	}
}
