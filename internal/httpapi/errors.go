package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/VitaminP8/threadly/internal/model"

	"github.com/gin-gonic/gin"
)

var errForbidden = errors.New("only the author can do this")

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// writeError переводит доменные ошибки в HTTP статусы
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case model.IsNotFound(err):
		status = http.StatusNotFound
	case model.IsConflict(err):
		status = http.StatusConflict
	case model.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		h.logf("request %s: %v", c.GetString(requestIDKey), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, model.Invalid(name, "must be a positive integer")
	}
	return uint(id), nil
}

// pagination разбирает page/page_size в limit/offset
func pagination(c *gin.Context) (limit, offset int, err error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt(c, "page_size", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page > math.MaxInt32/size {
		return 0, 0, model.Invalid("page", "page is too large")
	}
	return size, (page - 1) * size, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, model.Invalid(key, "must be a positive integer")
	}
	return n, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return model.Invalid("body", err.Error())
	}
	return nil
}
