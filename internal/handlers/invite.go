package handlers

import (
	"errors"
	"net/http"

	"hatirlat/internal/logger"
	"hatirlat/internal/models"
	"hatirlat/internal/store"

	"github.com/gin-gonic/gin"
)

// invitePreview is what an invitee sees before joining
type invitePreview struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
}

// PreviewInvite shows the group behind a join code without requiring auth
func (h *Handler) PreviewInvite(c *gin.Context) {
	group, err := h.store.GetGroupByJoinCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleError(c, err, "Invite")
		return
	}
	c.JSON(http.StatusOK, invitePreview{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		MemberCount: group.MemberCount,
	})
}

// JoinGroup redeems a join code. New members start Pending until the owner approves them.
func (h *Handler) JoinGroup(c *gin.Context) {
	var req models.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	group, err := h.store.GetGroupByJoinCode(ctx, c.Param("code"))
	if err != nil {
		handleError(c, err, "Invite")
		return
	}

	member := req.ToMember(group.ID)
	existing, err := h.store.FindMemberByEmail(ctx, group.ID, member.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "already a member", "member": existing})
		return
	case !errors.Is(err, store.ErrNotFound):
		handleError(c, err, "Member")
		return
	}

	member.SetDefaults(h.clock.Now())
	if err := h.store.CreateMember(ctx, member); err != nil {
		// a concurrent join with the same email won the race
		if errors.Is(err, store.ErrConflict) {
			if existing, ferr := h.store.FindMemberByEmail(ctx, group.ID, member.Email); ferr == nil {
				c.JSON(http.StatusOK, gin.H{"message": "already a member", "member": existing})
				return
			}
		}
		handleError(c, err, "Member")
		return
	}
	logger.Info("Join request received", "group", group.ID, "member", member.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "join request sent", "member": member})
}
