package httpapi

import (
	"github.com/gin-gonic/gin"
)

// PostEvents отдает события поста как Server-Sent Events, пока клиент не отключится
func (h *Handler) PostEvents(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}
	if _, err := h.Posts.GetPostByID(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	events, cancel := h.Events.Subscribe(id)
	defer cancel()

	c.Header("Content-Type", "text/event-stream;charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(ev.Kind), ev)
			c.Writer.Flush()
		}
	}
}
