package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/team"
	"github.com/fekuna/omnipos-backoffice-service/internal/team/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	uc     team.UseCase
	logger logger.ZapLogger
}

func NewTeamHandler(uc team.UseCase, log logger.ZapLogger) *TeamHandler {
	return &TeamHandler{uc: uc, logger: log}
}

func (h *TeamHandler) List(c *gin.Context) {
	members, err := h.uc.ListMembers(c.Request.Context(), auth.GetBusinessID(c))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *TeamHandler) Invite(c *gin.Context) {
	var input dto.InviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)

	res, err := h.uc.Invite(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *TeamHandler) Remove(c *gin.Context) {
	err := h.uc.RemoveMember(c.Request.Context(), &dto.RemoveMemberInput{
		BusinessID: auth.GetBusinessID(c),
		CallerID:   auth.GetUserID(c),
		RoleID:     c.Param("role_id"),
	})
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser serves POST /functions/delete-user. A body without user_id is
// answered by the use case so the 400 precedes the ownership check.
func (h *TeamHandler) DeleteUser(c *gin.Context) {
	var input dto.DeleteUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	user := auth.GetUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	input.BusinessID = user.BusinessID
	input.CallerID = user.UserID
	input.CallerIsOwner = user.BusinessID != "" && user.IsOwner()

	if err := h.uc.DeleteUser(c.Request.Context(), &input); err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
