package v1

import (
	"net/http"
	"strconv"

	"go-profile-backend/internal/delivery/http/response"
	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(viewable *gin.RouterGroup, protected *gin.RouterGroup, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	// Public view; auth is optional so owners can see their private profile
	viewable.GET("/profiles/:userId", handler.View)

	me := protected.Group("/me/profile")
	{
		me.GET("", handler.GetOwn)
		me.PUT("", handler.Save)
		me.POST("/skills", handler.AddSkill)
		me.DELETE("/skills/:index", handler.RemoveSkill)
		me.POST("/experience", handler.AddExperience)
	}
}

func (h *ProfileHandler) GetOwn(c *gin.Context) {
	profile, err := h.profileUC.GetOwn(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", profile)
}

func (h *ProfileHandler) View(c *gin.Context) {
	ownerID := c.Param("userId")
	if ownerID == "" {
		c.Error(apperror.BadRequest("User id is required"))
		return
	}

	profile, err := h.profileUC.View(c.Request.Context(), ownerID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", profile)
}

// Save applies a partial update. Fields absent from the body stay untouched;
// present collections replace wholesale.
func (h *ProfileHandler) Save(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.profileUC.Save(c.Request.Context(), &patch); err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.GetOwn(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}

type AddSkillRequest struct {
	Skill string `json:"skill" binding:"required"`
}

func (h *ProfileHandler) AddSkill(c *gin.Context) {
	var req AddSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile, err := h.profileUC.AddSkill(c.Request.Context(), req.Skill)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill added", profile)
}

func (h *ProfileHandler) RemoveSkill(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.Error(apperror.BadRequest("Skill index must be a number"))
		return
	}

	profile, err := h.profileUC.RemoveSkillAt(c.Request.Context(), index)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill removed", profile)
}

func (h *ProfileHandler) AddExperience(c *gin.Context) {
	var item domain.ExperienceItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile, err := h.profileUC.AddExperience(c.Request.Context(), item)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Experience added", profile)
}
