package handler

import (
	"errors"
	"net/http"

	"github.com/bitfantasy/goldassay/internal/assay/service"
	"github.com/gin-gonic/gin"
)

// PhotoHandler MinIO 照片透传
type PhotoHandler struct {
	svc *service.PhotoService
}

func NewPhotoHandler(svc *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{svc: svc}
}

// Get GET /photos/*object
func (h *PhotoHandler) Get(c *gin.Context) {
	object, contentType, err := h.svc.Open(c.Request.Context(), c.Param("object"))
	if err != nil {
		if errors.Is(err, service.ErrPhotoStorageOff) {
			NotFound(c, err.Error())
			return
		}
		RespondError(c, err)
		return
	}
	defer object.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, object, map[string]string{
		"Cache-Control": "private, max-age=86400",
	})
}
