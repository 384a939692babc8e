package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/models"
	"github.com/jinzhu/gorm"
)

// nodeStore - реализация content.NodeStore поверх gorm; db может быть транзакцией
type nodeStore struct {
	db *gorm.DB
}

func (n nodeStore) tally(db *gorm.DB, target model.Target) (model.Tally, error) {
	if err := target.Validate(); err != nil {
		return model.Tally{}, err
	}

	switch target.Kind() {
	case model.KindPost:
		var p models.Post
		err := db.First(&p, target.ID()).Error
		if err != nil {
			return model.Tally{}, notFoundOr(err, "post", target.ID())
		}
		return model.Tally{Target: target, PostID: p.ID, Upvotes: p.Upvotes, Downvotes: p.Downvotes}, nil
	default:
		var c models.Comment
		err := db.First(&c, target.ID()).Error
		if err != nil {
			return model.Tally{}, notFoundOr(err, "comment", target.ID())
		}
		return model.Tally{Target: target, PostID: c.PostID, Upvotes: c.Upvotes, Downvotes: c.Downvotes}, nil
	}
}

func tallyColumn(p model.Polarity) string {
	if p == model.Down {
		return "downvotes"
	}
	return "upvotes"
}

func recordFor(kind model.TargetKind) interface{} {
	if kind == model.KindPost {
		return &models.Post{}
	}
	return &models.Comment{}
}

// AdjustTally меняет счетчик одним UPDATE с ограничением снизу нулем.
// На Postgres строка цели дополнительно блокируется до конца транзакции.
func (n nodeStore) AdjustTally(ctx context.Context, target model.Target, polarity model.Polarity, delta int) (model.Tally, error) {
	if !polarity.Valid() {
		return model.Tally{}, model.Invalid("polarity", "unknown polarity")
	}
	if delta != 1 && delta != -1 {
		return model.Tally{}, model.Invalid("delta", "delta must be +1 or -1")
	}

	if _, err := n.tally(forUpdate(n.db), target); err != nil {
		return model.Tally{}, err
	}

	col := tallyColumn(polarity)
	expr := gorm.Expr(fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", col), delta, delta)
	res := n.db.Model(recordFor(target.Kind())).Where("id = ?", target.ID()).UpdateColumn(col, expr)
	if res.Error != nil {
		return model.Tally{}, fmt.Errorf("could not adjust tally of %s: %w", target, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Tally{}, model.NotFound(string(target.Kind()), target.ID())
	}

	return n.tally(n.db, target)
}

func (n nodeStore) GetTally(ctx context.Context, target model.Target) (model.Tally, error) {
	return n.tally(n.db, target)
}

func (n nodeStore) LookupTarget(ctx context.Context, id uint) (model.Target, error) {
	var count int
	err := n.db.Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return model.Target{}, err
	}
	if count > 0 {
		return model.PostTarget(id), nil
	}

	err = n.db.Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return model.Target{}, err
	}
	if count > 0 {
		return model.CommentTarget(id), nil
	}
	return model.Target{}, model.NotFound("target", id)
}
