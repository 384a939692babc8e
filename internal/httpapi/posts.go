package httpapi

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/VitaminP8/threadly/internal/comment"
	"github.com/VitaminP8/threadly/internal/model"

	"github.com/gin-gonic/gin"
)

const maxTitleLength = 100

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r postRequest) validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return model.Invalid("title", "title is too long or empty")
	}
	return nil
}

func (h *Handler) ListPosts(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	summaries, err := h.Summary.ListPostSummaries(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}

	summary, err := h.Summary.PostSummary(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(c, err)
		return
	}

	p := &model.Post{Title: strings.TrimSpace(req.Title), Content: req.Content, AuthorID: currentUser(c)}
	if err := h.Posts.CreatePost(c.Request.Context(), p); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ownPost возвращает пост, если текущий пользователь его автор
func (h *Handler) ownPost(c *gin.Context) (*model.Post, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	p, err := h.Posts.GetPostByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != currentUser(c) {
		return nil, errForbidden
	}
	return p, nil
}

func (h *Handler) UpdatePost(c *gin.Context) {
	p, err := h.ownPost(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(c, err)
		return
	}

	updated, err := h.Posts.UpdatePost(c.Request.Context(), p.ID, strings.TrimSpace(req.Title), req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeletePost(c *gin.Context) {
	p, err := h.ownPost(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.Posts.DeletePostByID(c.Request.Context(), p.ID); err != nil {
		h.writeError(c, err)
		return
	}
	h.Summary.Invalidate(p.ID)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListComments(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}
	limit, offset, err := pagination(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	nodes, err := comment.Collect(h.Threads.RenderThread(c.Request.Context(), id, limit, offset))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}
