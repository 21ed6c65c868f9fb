package handlers

import (
	"net/http"
	"strings"

	"hatirlat/internal/auth"
	"hatirlat/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.store.ListGroups(c.Request.Context(), auth.Username(c))
	if err != nil {
		handleError(c, err, "Groups")
		return
	}
	for i := range groups {
		groups[i].WithInviteLink(h.publicURL)
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) GetGroup(c *gin.Context) {
	group, err := h.store.GetGroup(c.Request.Context(), auth.Username(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "Group")
		return
	}
	group.WithInviteLink(h.publicURL)
	c.JSON(http.StatusOK, group)
}

// CreateGroup creates a group with a fresh join code
func (h *Handler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	group := &models.Group{
		Owner:       auth.Username(c),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := group.SetDefaults(h.clock.Now()); err != nil {
		handleError(c, err, "Group")
		return
	}
	if err := h.store.CreateGroup(c.Request.Context(), group); err != nil {
		handleError(c, err, "Group")
		return
	}
	group.WithInviteLink(h.publicURL)
	c.JSON(http.StatusCreated, group)
}

func (h *Handler) UpdateGroup(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.store.GetGroup(ctx, auth.Username(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "Group")
		return
	}

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ApplyTo(group)

	if err := h.store.SaveGroup(ctx, group); err != nil {
		handleError(c, err, "Group")
		return
	}
	group.WithInviteLink(h.publicURL)
	c.JSON(http.StatusOK, group)
}

// DeleteGroup removes the group and its members. Reminders that target it are kept.
func (h *Handler) DeleteGroup(c *gin.Context) {
	if err := h.store.DeleteGroup(c.Request.Context(), auth.Username(c), c.Param("id")); err != nil {
		handleError(c, err, "Group")
		return
	}
	c.Status(http.StatusNoContent)
}
