package handlers

import (
	"net/http"
	"strings"

	"hatirlat/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateAccount registers a free account
func (h *Handler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account := &models.Account{
		Username: req.Username,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := account.SetPassword(req.Password); err != nil {
		handleError(c, err, "Account")
		return
	}
	account.SetDefaults(h.clock.Now())

	if err := h.store.CreateAccount(c.Request.Context(), account); err != nil {
		handleError(c, err, "Account")
		return
	}
	c.JSON(http.StatusCreated, account)
}
