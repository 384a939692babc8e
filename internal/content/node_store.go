package content

import (
	"context"

	"github.com/VitaminP8/threadly/internal/model"
)

// NodeStore - единственная точка изменения счётчиков голосов постов и комментариев.
// Реализации сериализуют read-modify-write по одной цели (атомарный UPDATE, блокировка строки или мьютекс).
type NodeStore interface {
	// AdjustTally меняет счётчик полярности на delta (+1/-1), не опуская его ниже нуля.
	AdjustTally(ctx context.Context, target model.Target, polarity model.Polarity, delta int) (model.Tally, error)
	GetTally(ctx context.Context, target model.Target) (model.Tally, error)
	// LookupTarget ищет сырой id сначала среди постов, затем среди комментариев.
	LookupTarget(ctx context.Context, id uint) (model.Target, error)
}
