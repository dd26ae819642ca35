package public

import (
	"errors"
	"net/http"
	"strings"

	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/objstore"

	"github.com/gin-gonic/gin"
)

const thumbnailPrefix = "thumbnail/"

// ServeMedia 读取已上传的媒体文件；thumbnail/ 前缀目前直接返回原文件
func (h *Handler) ServeMedia(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filepath"), "/")
	key = strings.TrimPrefix(key, thumbnailPrefix)
	h.serveObject(c, key)
}

func (h *Handler) serveObject(c *gin.Context, key string) {
	reader, info, err := h.UploadService.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) || errors.Is(err, objstore.ErrInvalidKey) {
			respondError(c, response.CodeNotFound, "error.not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, reader, nil)
}
