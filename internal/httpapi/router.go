package httpapi

import (
	"log"

	"github.com/VitaminP8/threadly/internal/aggregate"
	"github.com/VitaminP8/threadly/internal/comment"
	"github.com/VitaminP8/threadly/internal/post"
	"github.com/VitaminP8/threadly/internal/reaction"
	"github.com/VitaminP8/threadly/internal/subscription"
	"github.com/VitaminP8/threadly/internal/user"

	"github.com/gin-gonic/gin"
)

// Handler собирает все зависимости HTTP слоя
type Handler struct {
	Users   user.UserStorage
	Posts   post.PostStorage
	Threads *comment.Builder
	Ledger  *reaction.Ledger
	Summary *aggregate.Service
	Events  subscription.Manager
	Logger  *log.Logger
}

func (h *Handler) logf(format string, args ...any) {
	if h.Logger == nil {
		log.Printf(format, args...)
		return
	}
	h.Logger.Printf(format, args...)
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestID(), authenticate())

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	r.GET("/posts", h.ListPosts)
	r.GET("/posts/:id", h.GetPost)
	r.GET("/posts/:id/comments", h.ListComments)
	r.GET("/posts/:id/reactions", h.ListPostReactions)
	r.GET("/posts/:id/events", h.PostEvents)

	r.GET("/comments/:id", h.GetComment)
	r.GET("/comments/:id/tree", h.CommentTree)
	r.GET("/comments/:id/reactions", h.ListCommentReactions)

	r.GET("/reactions/:id", h.GetReaction)

	authorized := r.Group("/")
	authorized.Use(requireUser())
	{
		authorized.POST("/posts", h.CreatePost)
		authorized.PUT("/posts/:id", h.UpdatePost)
		authorized.DELETE("/posts/:id", h.DeletePost)
		authorized.POST("/posts/:id/comments", h.CreateComment)
		authorized.POST("/posts/:id/reactions", h.ReactToPost)

		authorized.PUT("/comments/:id", h.UpdateComment)
		authorized.DELETE("/comments/:id", h.DeleteComment)
		authorized.POST("/comments/:id/reply", h.ReplyToComment)
		authorized.POST("/comments/:id/reactions", h.ReactToComment)

		authorized.POST("/reactions", h.ReactByRawID)
		authorized.PUT("/reactions/:id", h.UpdateReaction)
		authorized.DELETE("/reactions/:id", h.DeleteReaction)
	}

	return r
}
