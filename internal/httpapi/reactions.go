package httpapi

import (
	"net/http"

	"github.com/VitaminP8/threadly/internal/model"

	"github.com/gin-gonic/gin"
)

type reactionRequest struct {
	ReactionType *model.Polarity `json:"reaction_type"`
	// TargetID и TargetKind используются только в POST /reactions
	TargetID   uint   `json:"target_id"`
	TargetKind string `json:"target_kind"`
}

func (r reactionRequest) polarity() (model.Polarity, error) {
	if r.ReactionType == nil {
		return 0, model.Invalid("reaction_type", "reaction_type is required")
	}
	return *r.ReactionType, nil
}

func (h *Handler) react(c *gin.Context, target model.Target) {
	var req reactionRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	polarity, err := req.polarity()
	if err != nil {
		h.writeError(c, err)
		return
	}

	r, err := h.Ledger.Create(c.Request.Context(), currentUser(c), target, polarity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ReactToPost(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.react(c, model.PostTarget(id))
}

func (h *Handler) ReactToComment(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.react(c, model.CommentTarget(id))
}

// ReactByRawID: без target_kind тип цели определяется пробой (сначала пост)
func (h *Handler) ReactByRawID(c *gin.Context) {
	var req reactionRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	polarity, err := req.polarity()
	if err != nil {
		h.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	var r *model.Reaction
	if req.TargetKind != "" {
		target, err := model.NewTarget(model.TargetKind(req.TargetKind), req.TargetID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		r, err = h.Ledger.Create(ctx, currentUser(c), target, polarity)
		if err != nil {
			h.writeError(c, err)
			return
		}
	} else {
		r, err = h.Ledger.CreateByRawID(ctx, currentUser(c), req.TargetID, polarity)
		if err != nil {
			h.writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) listReactions(c *gin.Context, target model.Target) {
	reactions, err := h.Ledger.List(c.Request.Context(), target)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reactions)
}

func (h *Handler) ListPostReactions(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.listReactions(c, model.PostTarget(id))
}

func (h *Handler) ListCommentReactions(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.listReactions(c, model.CommentTarget(id))
}

func (h *Handler) GetReaction(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}

	r, err := h.Ledger.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) ownReaction(c *gin.Context) (*model.Reaction, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	r, err := h.Ledger.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if r.AuthorID != currentUser(c) {
		return nil, errForbidden
	}
	return r, nil
}

func (h *Handler) UpdateReaction(c *gin.Context) {
	existing, err := h.ownReaction(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var req reactionRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	polarity, err := req.polarity()
	if err != nil {
		h.writeError(c, err)
		return
	}

	updated, err := h.Ledger.Update(c.Request.Context(), existing.ID, polarity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteReaction(c *gin.Context) {
	existing, err := h.ownReaction(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if _, err := h.Ledger.Delete(c.Request.Context(), existing.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
