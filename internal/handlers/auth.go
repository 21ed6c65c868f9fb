package handlers

import (
	"errors"
	"net/http"

	"hatirlat/internal/auth"
	"hatirlat/internal/logger"
	"hatirlat/internal/models"
	"hatirlat/internal/store"

	"github.com/gin-gonic/gin"
)

type tokenResponse struct {
	auth.TokenPair
	User *models.Account `json:"user"`
}

// Token exchanges username and password for a bearer token pair
func (h *Handler) Token(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	account, err := h.store.GetAccount(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}
		handleError(c, err, "Account")
		return
	}
	if !account.VerifyPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	now := h.clock.Now()
	if err := h.store.TouchLogin(ctx, account.Username, now); err != nil {
		logger.Warn("Failed to update last login", "username", account.Username, "err", err)
	} else {
		account.LastLogin = now
	}

	h.issueTokens(c, account)
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *Handler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	claims, err := h.tokens.Validate(req.RefreshToken, auth.RefreshToken)
	if err != nil {
		message := "invalid refresh token"
		if errors.Is(err, auth.ErrExpiredToken) {
			message = "refresh token expired, please log in again"
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": message})
		return
	}

	account, err := h.store.GetAccount(c.Request.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "account no longer exists"})
			return
		}
		handleError(c, err, "Account")
		return
	}

	h.issueTokens(c, account)
}

func (h *Handler) issueTokens(c *gin.Context, account *models.Account) {
	pair, err := h.tokens.Issue(account.Username)
	if err != nil {
		handleError(c, err, "Token")
		return
	}
	c.JSON(http.StatusOK, tokenResponse{TokenPair: pair, User: account})
}
