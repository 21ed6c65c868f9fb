package handlers

import (
	"net/http"

	"hatirlat/internal/auth"
	"hatirlat/internal/models"
	"hatirlat/internal/services"

	"github.com/gin-gonic/gin"
)

// ListReminders returns the caller's reminders filtered by q, status, type and channel
func (h *Handler) ListReminders(c *gin.Context) {
	var filter services.ReminderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}

	reminders, err := h.store.ListReminders(c.Request.Context(), auth.Username(c))
	if err != nil {
		handleError(c, err, "Reminders")
		return
	}
	c.JSON(http.StatusOK, filter.Apply(reminders))
}

func (h *Handler) GetReminder(c *gin.Context) {
	reminder, err := h.store.GetReminder(c.Request.Context(), auth.Username(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "Reminder")
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (h *Handler) CreateReminder(c *gin.Context) {
	var req models.ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	owner := auth.Username(c)
	reminder := req.ToReminder(owner)
	if !h.resolveGroup(c, owner, reminder) {
		return
	}

	reminder.SetDefaults(h.clock.Now())
	if err := h.store.CreateReminder(c.Request.Context(), reminder); err != nil {
		handleError(c, err, "Reminder")
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

// UpdateReminder applies a partial update; omitted fields keep their value
func (h *Handler) UpdateReminder(c *gin.Context) {
	owner := auth.Username(c)
	reminder, err := h.store.GetReminder(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		handleError(c, err, "Reminder")
		return
	}

	var req models.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.ApplyTo(reminder); err != nil {
		badRequest(c, err)
		return
	}
	if (req.Group != nil || req.Type != nil) && !h.resolveGroup(c, owner, reminder) {
		return
	}

	if err := h.store.SaveReminder(c.Request.Context(), reminder); err != nil {
		handleError(c, err, "Reminder")
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (h *Handler) DeleteReminder(c *gin.Context) {
	if err := h.store.DeleteReminder(c.Request.Context(), auth.Username(c), c.Param("id")); err != nil {
		handleError(c, err, "Reminder")
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleReminder flips a reminder between scheduled and paused
func (h *Handler) ToggleReminder(c *gin.Context) {
	reminder, err := h.store.GetReminder(c.Request.Context(), auth.Username(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "Reminder")
		return
	}
	if err := reminder.ToggleStatus(); err != nil {
		handleError(c, err, "Reminder")
		return
	}
	if err := h.store.SaveReminder(c.Request.Context(), reminder); err != nil {
		handleError(c, err, "Reminder")
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// UpdateReminderStatus sets the status directly
func (h *Handler) UpdateReminderStatus(c *gin.Context) {
	var req models.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reminder, err := h.store.GetReminder(c.Request.Context(), auth.Username(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "Reminder")
		return
	}
	reminder.Status = req.Status
	if err := h.store.SaveReminder(c.Request.Context(), reminder); err != nil {
		handleError(c, err, "Reminder")
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// ReminderStats summarizes the caller's reminders for the dashboard
func (h *Handler) ReminderStats(c *gin.Context) {
	reminders, err := h.store.ListReminders(c.Request.Context(), auth.Username(c))
	if err != nil {
		handleError(c, err, "Reminders")
		return
	}
	c.JSON(http.StatusOK, services.ComputeStats(reminders, h.clock.Now().In(h.location)))
}

// ListDeliveries returns the delivery log of one reminder, newest first
func (h *Handler) ListDeliveries(c *gin.Context) {
	ctx := c.Request.Context()
	reminder, err := h.store.GetReminder(ctx, auth.Username(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "Reminder")
		return
	}
	deliveries, err := h.store.ListDeliveries(ctx, reminder.ID)
	if err != nil {
		handleError(c, err, "Deliveries")
		return
	}
	c.JSON(http.StatusOK, deliveries)
}

// resolveGroup checks that a group reminder targets one of the owner's groups and
// copies the current group name. It writes the error response and returns false on failure.
func (h *Handler) resolveGroup(c *gin.Context, owner string, r *models.Reminder) bool {
	if r.Type != models.GroupReminder {
		return true
	}
	group, err := h.store.GetGroup(c.Request.Context(), owner, r.Group.ID)
	if err != nil {
		handleError(c, err, "Group")
		return false
	}
	r.Group = group.Ref()
	return true
}
