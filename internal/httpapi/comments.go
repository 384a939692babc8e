package httpapi

import (
	"net/http"

	"github.com/VitaminP8/threadly/internal/comment"
	"github.com/VitaminP8/threadly/internal/model"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
	MaxDepth *int   `json:"max_depth"`
}

func (h *Handler) attach(c *gin.Context, postID uint, parentID *uint) {
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	if parentID == nil {
		parentID = req.ParentID
	}

	created, err := h.Threads.Attach(c.Request.Context(), comment.AttachInput{
		AuthorID: currentUser(c),
		PostID:   postID,
		ParentID: parentID,
		Content:  req.Content,
		MaxDepth: req.MaxDepth,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.Summary.Invalidate(created.PostID)
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) CreateComment(c *gin.Context) {
	postID, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.attach(c, postID, nil)
}

// ReplyToComment: пост берется у родителя
func (h *Handler) ReplyToComment(c *gin.Context) {
	parentID, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.attach(c, 0, &parentID)
}

func (h *Handler) GetComment(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}

	summary, err := h.Summary.CommentSummary(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) CommentTree(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}

	node, err := h.Threads.Subtree(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *Handler) ownComment(c *gin.Context) (*model.Comment, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	summary, err := h.Summary.CommentSummary(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if summary.Comment.AuthorID != currentUser(c) {
		return nil, errForbidden
	}
	return summary.Comment, nil
}

func (h *Handler) UpdateComment(c *gin.Context) {
	existing, err := h.ownComment(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}

	updated, err := h.Threads.Edit(c.Request.Context(), existing.ID, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	existing, err := h.ownComment(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	removed, err := h.Threads.Remove(c.Request.Context(), existing.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.Summary.Invalidate(removed.PostID)
	c.Status(http.StatusNoContent)
}
