package v1

import (
	"io"
	"net/http"

	"go-profile-backend/internal/delivery/http/response"
	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/imaging"

	"github.com/gin-gonic/gin"
)

type AvatarHandler struct {
	avatarUC domain.AvatarUsecase
}

func NewAvatarHandler(protected *gin.RouterGroup, avatarUC domain.AvatarUsecase) {
	handler := &AvatarHandler{avatarUC: avatarUC}

	me := protected.Group("/me/avatar")
	{
		me.POST("", handler.Upload)
		me.DELETE("", handler.Remove)
	}
}

func (h *AvatarHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.Error(apperror.BadRequest("Avatar file is required (multipart field 'avatar')"))
		return
	}

	// Reject oversized uploads before buffering the body
	if fileHeader.Size > imaging.MaxAvatarBytes {
		c.Error(apperror.InvalidImage("Image must be 2MB or smaller"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	url, err := h.avatarUC.Upload(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Avatar updated", gin.H{"photo_url": url})
}

func (h *AvatarHandler) Remove(c *gin.Context) {
	if err := h.avatarUC.Remove(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Avatar removed", nil)
}
