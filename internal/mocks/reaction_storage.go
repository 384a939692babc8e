package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/internal/reaction"
)

// ErrInjected - ошибка, подставляемая FailingReactionStorage
var ErrInjected = errors.New("injected failure")

// FailingReactionStorage оборачивает настоящее хранилище и роняет транзакцию
// на заданном шаге, чтобы проверять откат
type FailingReactionStorage struct {
	reaction.ReactionStorage

	mu sync.Mutex
	// FailAdjustAt - номер вызова AdjustTally внутри транзакции (с 1), на котором вернуть ошибку; 0 - не падать
	FailAdjustAt int
	// FailUpdatePolarity роняет UpdatePolarity
	FailUpdatePolarity bool
	// FailDelete роняет DeleteReactionByID
	FailDelete bool
}

func NewFailingReactionStorage(inner reaction.ReactionStorage) *FailingReactionStorage {
	return &FailingReactionStorage{ReactionStorage: inner}
}

func (m *FailingReactionStorage) Atomic(ctx context.Context, fn func(tx reaction.Tx) error) error {
	m.mu.Lock()
	cfg := failingTx{
		failAdjustAt:       m.FailAdjustAt,
		failUpdatePolarity: m.FailUpdatePolarity,
		failDelete:         m.FailDelete,
	}
	m.mu.Unlock()

	return m.ReactionStorage.Atomic(ctx, func(tx reaction.Tx) error {
		ftx := cfg
		ftx.Tx = tx
		return fn(&ftx)
	})
}

type failingTx struct {
	reaction.Tx

	adjustCalls        int
	failAdjustAt       int
	failUpdatePolarity bool
	failDelete         bool
}

func (f *failingTx) AdjustTally(ctx context.Context, target model.Target, polarity model.Polarity, delta int) (model.Tally, error) {
	f.adjustCalls++
	if f.adjustCalls == f.failAdjustAt {
		return model.Tally{}, ErrInjected
	}
	return f.Tx.AdjustTally(ctx, target, polarity, delta)
}

func (f *failingTx) UpdatePolarity(ctx context.Context, id uint, polarity model.Polarity) (*model.Reaction, error) {
	if f.failUpdatePolarity {
		return nil, ErrInjected
	}
	return f.Tx.UpdatePolarity(ctx, id, polarity)
}

func (f *failingTx) DeleteReactionByID(ctx context.Context, id uint) error {
	if f.failDelete {
		return ErrInjected
	}
	return f.Tx.DeleteReactionByID(ctx, id)
}
