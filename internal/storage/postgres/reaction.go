package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/internal/reaction"
	"github.com/VitaminP8/threadly/models"
	"github.com/jinzhu/gorm"
)

type ReactionPostgresStorage struct {
	nodeStore
}

func NewReactionPostgresStorage(db *gorm.DB) *ReactionPostgresStorage {
	return &ReactionPostgresStorage{nodeStore{db: db}}
}

// reactionTx - представление хранилища поверх открытой транзакции
type reactionTx struct {
	nodeStore
}

var (
	_ reaction.Tx              = reactionTx{}
	_ reaction.ReactionStorage = (*ReactionPostgresStorage)(nil)
)

func (s *ReactionPostgresStorage) Atomic(ctx context.Context, fn func(tx reaction.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("could not begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	err = fn(reactionTx{nodeStore{db: tx}})
	if err != nil {
		tx.Rollback()
		return err
	}

	err = tx.Commit().Error
	if err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func (tx reactionTx) FindReaction(ctx context.Context, authorID uint, target model.Target) (*model.Reaction, error) {
	var rec models.Reaction
	err := forUpdate(tx.db).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", authorID, string(target.Kind()), target.ID()).
		First(&rec).Error
	if err != nil {
		return nil, notFoundOr(err, "reaction", target.String())
	}
	return toReaction(&rec)
}

func (tx reactionTx) GetReactionByID(ctx context.Context, id uint) (*model.Reaction, error) {
	var rec models.Reaction
	err := forUpdate(tx.db).First(&rec, id).Error
	if err != nil {
		return nil, notFoundOr(err, "reaction", id)
	}
	return toReaction(&rec)
}

func (tx reactionTx) InsertReaction(ctx context.Context, r *model.Reaction) error {
	rec := &models.Reaction{
		UserID:     r.AuthorID,
		TargetKind: string(r.Target.Kind()),
		TargetID:   r.Target.ID(),
		Polarity:   int(r.Polarity),
	}

	err := tx.db.Create(rec).Error
	if isUniqueViolation(err) {
		return model.Conflict("reaction by user %d on %s already exists", r.AuthorID, r.Target)
	}
	if err != nil {
		return fmt.Errorf("could not create reaction: %w", err)
	}

	r.ID = rec.ID
	r.CreatedAt = rec.CreatedAt
	r.UpdatedAt = rec.UpdatedAt
	return nil
}

func (tx reactionTx) UpdatePolarity(ctx context.Context, id uint, polarity model.Polarity) (*model.Reaction, error) {
	var rec models.Reaction
	err := tx.db.First(&rec, id).Error
	if err != nil {
		return nil, notFoundOr(err, "reaction", id)
	}

	err = tx.db.Model(&rec).Updates(map[string]interface{}{"polarity": int(polarity)}).Error
	if err != nil {
		return nil, fmt.Errorf("could not update reaction: %w", err)
	}
	return toReaction(&rec)
}

func (tx reactionTx) DeleteReactionByID(ctx context.Context, id uint) error {
	res := tx.db.Where("id = ?", id).Delete(&models.Reaction{})
	if res.Error != nil {
		return fmt.Errorf("could not delete reaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.NotFound("reaction", id)
	}
	return nil
}

func (s *ReactionPostgresStorage) GetReactionByID(ctx context.Context, id uint) (*model.Reaction, error) {
	var rec models.Reaction
	err := s.db.First(&rec, id).Error
	if err != nil {
		return nil, notFoundOr(err, "reaction", id)
	}
	return toReaction(&rec)
}

func (s *ReactionPostgresStorage) GetReactions(ctx context.Context, target model.Target) ([]*model.Reaction, error) {
	if _, err := s.tally(s.db, target); err != nil {
		return nil, err
	}

	var recs []models.Reaction
	err := s.db.Where("target_kind = ? AND target_id = ?", string(target.Kind()), target.ID()).
		Order("id asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("could not get reactions: %w", err)
	}

	results := make([]*model.Reaction, 0, len(recs))
	for i := range recs {
		r, err := toReaction(&recs[i])
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

type reactionCount struct {
	TargetKind string
	TargetID   uint
	Polarity   int
	N          int
}

type tallyRow struct {
	ID        uint
	PostID    uint
	Upvotes   int
	Downvotes int
}

// RecountTallies сверяет счетчики с журналом реакций в одной транзакции
func (s *ReactionPostgresStorage) RecountTallies(ctx context.Context) ([]model.Tally, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", tx.Error)
	}

	fixed, err := recount(tx)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("could not recount tallies: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("could not commit recount: %w", err)
	}
	return fixed, nil
}

func recount(tx *gorm.DB) ([]model.Tally, error) {
	var counts []reactionCount
	err := tx.Model(&models.Reaction{}).
		Select("target_kind, target_id, polarity, count(*) as n").
		Group("target_kind, target_id, polarity").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	type pair struct{ up, down int }
	actual := make(map[model.Target]pair)
	for _, c := range counts {
		target, err := model.NewTarget(model.TargetKind(c.TargetKind), c.TargetID)
		if err != nil {
			return nil, err
		}
		p := actual[target]
		if model.Polarity(c.Polarity) == model.Up {
			p.up += c.N
		} else {
			p.down += c.N
		}
		actual[target] = p
	}

	var fixed []model.Tally
	for _, kind := range []model.TargetKind{model.KindPost, model.KindComment} {
		var rows []tallyRow
		query := tx.Model(recordFor(kind))
		if kind == model.KindPost {
			query = query.Select("id, id as post_id, upvotes, downvotes")
		} else {
			query = query.Select("id, post_id, upvotes, downvotes")
		}
		if err := query.Scan(&rows).Error; err != nil {
			return nil, err
		}

		for _, row := range rows {
			target, _ := model.NewTarget(kind, row.ID)
			want := actual[target]
			if row.Upvotes == want.up && row.Downvotes == want.down {
				continue
			}

			err := tx.Model(recordFor(kind)).Where("id = ?", row.ID).UpdateColumns(map[string]interface{}{
				"upvotes":   want.up,
				"downvotes": want.down,
			}).Error
			if err != nil {
				return nil, err
			}
			fixed = append(fixed, model.Tally{Target: target, PostID: row.PostID, Upvotes: want.up, Downvotes: want.down})
		}
	}
	return fixed, nil
}
