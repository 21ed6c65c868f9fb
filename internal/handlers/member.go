package handlers

import (
	"errors"
	"net/http"

	"hatirlat/internal/auth"
	"hatirlat/internal/models"
	"hatirlat/internal/store"

	"github.com/gin-gonic/gin"
)

// ownedGroup loads the group named in the path if the caller owns it
func (h *Handler) ownedGroup(c *gin.Context) (*models.Group, bool) {
	group, err := h.store.GetGroup(c.Request.Context(), auth.Username(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "Group")
		return nil, false
	}
	return group, true
}

func (h *Handler) ListMembers(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	members, err := h.store.ListMembers(c.Request.Context(), group.ID)
	if err != nil {
		handleError(c, err, "Members")
		return
	}
	c.JSON(http.StatusOK, members)
}

// AddMember adds a member directly; the email must be unique within the group
func (h *Handler) AddMember(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	var req models.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	member := req.ToMember(group.ID)
	_, err := h.store.FindMemberByEmail(ctx, group.ID, member.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusConflict, gin.H{"message": "a member with this email already exists"})
		return
	case !errors.Is(err, store.ErrNotFound):
		handleError(c, err, "Member")
		return
	}

	member.SetDefaults(h.clock.Now())
	if err := h.store.CreateMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"message": "a member with this email already exists"})
			return
		}
		handleError(c, err, "Member")
		return
	}
	c.JSON(http.StatusCreated, member)
}

// UpdateMember edits a member; setting status to Active approves a pending join
func (h *Handler) UpdateMember(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	member, err := h.store.GetMember(ctx, group.ID, c.Param("memberId"))
	if err != nil {
		handleError(c, err, "Member")
		return
	}

	var req models.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ApplyTo(member)

	if err := h.store.SaveMember(ctx, member); err != nil {
		handleError(c, err, "Member")
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	if err := h.store.DeleteMember(c.Request.Context(), group.ID, c.Param("memberId")); err != nil {
		handleError(c, err, "Member")
		return
	}
	c.Status(http.StatusNoContent)
}
