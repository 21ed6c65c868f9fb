package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"hatirlat/internal/auth"
	"hatirlat/internal/logger"
	"hatirlat/internal/models"
	"hatirlat/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/jmhodges/clock"
)

// Handler serves the HTTP API on top of a Store
type Handler struct {
	store     store.Store
	tokens    *auth.TokenIssuer
	clock     clock.Clock
	location  *time.Location
	publicURL string
}

// Options configures a Handler
type Options struct {
	Store     store.Store
	Tokens    *auth.TokenIssuer
	Clock     clock.Clock
	Location  *time.Location
	PublicURL string
}

func New(opts Options) *Handler {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Handler{
		store:     opts.Store,
		tokens:    opts.Tokens,
		clock:     opts.Clock,
		location:  opts.Location,
		publicURL: opts.PublicURL,
	}
}

// handleError maps domain errors to HTTP statuses; unexpected errors are logged and hidden
func handleError(c *gin.Context, err error, entity string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": entity + " not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": entity + " already exists"})
	case errors.Is(err, models.ErrNotToggleable):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		logger.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	logger.Debug("Invalid input", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Invalid input: %s", err.Error())})
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Hatirlat!")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
