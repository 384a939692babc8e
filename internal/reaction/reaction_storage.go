package reaction

import (
	"context"

	"github.com/VitaminP8/threadly/internal/content"
	"github.com/VitaminP8/threadly/internal/model"
)

// Tx - представление хранилища внутри одной транзакции.
// Все изменения, сделанные через Tx, фиксируются вместе или не фиксируются вовсе.
type Tx interface {
	content.NodeStore

	// FindReaction возвращает NotFoundError, если автор ещё не реагировал на цель
	FindReaction(ctx context.Context, authorID uint, target model.Target) (*model.Reaction, error)
	// GetReactionByID блокирует запись реакции до конца транзакции
	GetReactionByID(ctx context.Context, id uint) (*model.Reaction, error)
	// InsertReaction возвращает ConflictError при нарушении уникальности (автор, цель)
	InsertReaction(ctx context.Context, reaction *model.Reaction) error
	UpdatePolarity(ctx context.Context, id uint, polarity model.Polarity) (*model.Reaction, error)
	DeleteReactionByID(ctx context.Context, id uint) error
}

type ReactionStorage interface {
	// чтение счётчиков и определение цели по сырому id вне транзакции
	content.NodeStore

	Atomic(ctx context.Context, fn func(tx Tx) error) error
	GetReactionByID(ctx context.Context, id uint) (*model.Reaction, error)
	GetReactions(ctx context.Context, target model.Target) ([]*model.Reaction, error)
	// RecountTallies пересчитывает счётчики по журналу реакций и возвращает исправленные
	RecountTallies(ctx context.Context) ([]model.Tally, error)
}
