package reaction

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/internal/subscription"
)

// Ledger - единственный источник правды о реакциях.
// Только он меняет счётчики контента, и только внутри транзакции вместе с журналом.
type Ledger struct {
	store   ReactionStorage
	manager subscription.Manager
	logger  *log.Logger
}

type Option func(*Ledger)

func WithManager(m subscription.Manager) Option {
	return func(l *Ledger) { l.manager = m }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func NewLedger(store ReactionStorage, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create: NoReaction -> Reacted(polarity)
func (l *Ledger) Create(ctx context.Context, authorID uint, target model.Target, polarity model.Polarity) (*model.Reaction, error) {
	err := target.Validate()
	if err != nil {
		return nil, err
	}
	if !polarity.Valid() {
		return nil, model.Invalid("polarity", "unknown polarity")
	}

	r := &model.Reaction{AuthorID: authorID, Target: target, Polarity: polarity}
	var tally model.Tally

	err = l.store.Atomic(ctx, func(tx Tx) error {
		_, err := tx.GetTally(ctx, target)
		if err != nil {
			return err
		}

		_, err = tx.FindReaction(ctx, authorID, target)
		if err == nil {
			return model.Conflict("reaction by user %d on %s already exists", authorID, target)
		}
		if !model.IsNotFound(err) {
			return err
		}

		err = tx.InsertReaction(ctx, r)
		if err != nil {
			return err
		}

		tally, err = l.adjust(ctx, tx, target, polarity, 1)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.publish(tally)
	return r, nil
}

// CreateByRawID создает реакцию на цель, тип которой заранее неизвестен
func (l *Ledger) CreateByRawID(ctx context.Context, authorID, rawID uint, polarity model.Polarity) (*model.Reaction, error) {
	target, err := l.ResolveTarget(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return l.Create(ctx, authorID, target, polarity)
}

// Update: Reacted(p1) -> Reacted(p2). Оба счётчика и запись меняются в одной транзакции.
func (l *Ledger) Update(ctx context.Context, id uint, polarity model.Polarity) (*model.Reaction, error) {
	if !polarity.Valid() {
		return nil, model.Invalid("polarity", "unknown polarity")
	}

	var (
		result  *model.Reaction
		tally   model.Tally
		changed bool
	)
	err := l.store.Atomic(ctx, func(tx Tx) error {
		existing, err := tx.GetReactionByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.Polarity == polarity {
			result = existing
			return nil
		}

		_, err = l.adjust(ctx, tx, existing.Target, existing.Polarity, -1)
		if err != nil {
			return err
		}

		result, err = tx.UpdatePolarity(ctx, id, polarity)
		if err != nil {
			return err
		}

		tally, err = l.adjust(ctx, tx, existing.Target, polarity, 1)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		l.publish(tally)
	}
	return result, nil
}

// Delete: Reacted -> NoReaction. Возвращает удаленную реакцию.
func (l *Ledger) Delete(ctx context.Context, id uint) (*model.Reaction, error) {
	var (
		removed *model.Reaction
		tally   model.Tally
	)
	err := l.store.Atomic(ctx, func(tx Tx) error {
		var err error
		removed, err = tx.GetReactionByID(ctx, id)
		if err != nil {
			return err
		}

		tally, err = l.adjust(ctx, tx, removed.Target, removed.Polarity, -1)
		if err != nil {
			return err
		}
		return tx.DeleteReactionByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	l.publish(tally)
	return removed, nil
}

func (l *Ledger) Get(ctx context.Context, id uint) (*model.Reaction, error) {
	return l.store.GetReactionByID(ctx, id)
}

func (l *Ledger) List(ctx context.Context, target model.Target) ([]*model.Reaction, error) {
	err := target.Validate()
	if err != nil {
		return nil, err
	}
	return l.store.GetReactions(ctx, target)
}

// ResolveTarget определяет тип цели по сырому id: сначала пост, затем комментарий
func (l *Ledger) ResolveTarget(ctx context.Context, rawID uint) (model.Target, error) {
	if rawID == 0 {
		return model.Target{}, model.Invalid("target", "target id is missing")
	}
	return l.store.LookupTarget(ctx, rawID)
}

// adjust меняет счётчик и журналирует расхождения с журналом реакций
func (l *Ledger) adjust(ctx context.Context, tx Tx, target model.Target, polarity model.Polarity, delta int) (model.Tally, error) {
	if delta < 0 {
		before, err := tx.GetTally(ctx, target)
		if err == nil && before.Count(polarity) == 0 {
			l.logger.Printf("inconsistency: %s counter of %s is already zero, decrement clamped", polarity, target)
		}
	}

	tally, err := tx.AdjustTally(ctx, target, polarity, delta)
	if model.IsNotFound(err) {
		l.logger.Printf("inconsistency: reaction points at missing %s: %v", target, err)
	}
	if err != nil {
		return model.Tally{}, fmt.Errorf("could not adjust tally of %s: %w", target, err)
	}
	return tally, nil
}

func (l *Ledger) publish(tally model.Tally) {
	if l.manager == nil {
		return
	}
	t := tally
	l.manager.Publish(t.PostID, model.Event{
		Kind:   model.EventTallyChanged,
		PostID: t.PostID,
		Target: t.Target.String(),
		Tally:  &t,
	})
}

// Reconcile пересчитывает счётчики по журналу и чинит разошедшиеся
func (l *Ledger) Reconcile(ctx context.Context) ([]model.Tally, error) {
	fixed, err := l.store.RecountTallies(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not reconcile tallies: %w", err)
	}

	for _, t := range fixed {
		l.logger.Printf("tally of %s repaired: up=%d down=%d", t.Target, t.Upvotes, t.Downvotes)
		l.publish(t)
	}
	return fixed, nil
}

// RunReconciler запускает Reconcile с периодом interval до отмены ctx
func (l *Ledger) RunReconciler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := l.Reconcile(ctx)
			if err != nil {
				l.logger.Printf("reconciler: %v", err)
			}
		}
	}
}
