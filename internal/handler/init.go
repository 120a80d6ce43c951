package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type seeder interface {
	SeedIfEmpty(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type credentialInitializer interface {
	InitializeIfAbsent(ctx context.Context) error
}

type InitHandler struct {
	links       seeder
	credentials credentialInitializer
}

func NewInitHandler(links seeder, credentials credentialInitializer) *InitHandler {
	return &InitHandler{links: links, credentials: credentials}
}

// Initialize handles POST /init: creates the admin credential and seeds the
// starter links, each only when absent.
func (h *InitHandler) Initialize(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.credentials.InitializeIfAbsent(ctx); err != nil {
		return internalError(err, "Failed to initialize database")
	}

	seeded, err := h.links.SeedIfEmpty(ctx)
	if err != nil {
		return internalError(err, "Failed to initialize database")
	}

	log.Info().Bool("seeded", seeded).Msg("database initialized")
	return okMessage(c, "Database initialized successfully with admin authentication")
}

type StatusResponse struct {
	Success     bool  `json:"success"`
	Initialized bool  `json:"initialized"`
	Count       int64 `json:"count"`
}

// Status handles GET /init.
func (h *InitHandler) Status(c echo.Context) error {
	n, err := h.links.Count(c.Request().Context())
	if err != nil {
		return internalError(err, "Failed to check database status")
	}
	return c.JSON(http.StatusOK, StatusResponse{Success: true, Initialized: n > 0, Count: n})
}
