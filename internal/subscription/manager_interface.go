package subscription

import "github.com/VitaminP8/threadly/internal/model"

type Manager interface {
	Subscribe(postID uint) (<-chan model.Event, func())
	Publish(postID uint, event model.Event)
}
