package admin

import (
	"fmt"

	handlershared "github.com/storefront/internal/http/handlers/shared"
	"github.com/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

const uploadFieldName = "media"

// UploadMedia 批量上传商品媒体
func (h *Handler) UploadMedia(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.upload_invalid", err)
		return
	}
	files := form.File[uploadFieldName]
	uploaded, err := h.UploadService.SaveFiles(c.Request.Context(), files)
	if err != nil {
		handlershared.RespondWithMappedError(c, err, uploadErrorRules, response.CodeInternal, "error.upload_failed")
		return
	}
	requestLog(c).Infow("admin_media_uploaded", "count", len(uploaded))
	response.SuccessWithMsg(c, fmt.Sprintf("Uploaded %d file(s)", len(uploaded)), gin.H{"files": uploaded})
}
