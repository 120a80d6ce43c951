package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/abdusco/linkhub/internal"
	"github.com/abdusco/linkhub/internal/icon"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type linkStore interface {
	ListAll(ctx context.Context) ([]*internal.Link, error)
	ListByCategory(ctx context.Context, category internal.Category) ([]*internal.Link, error)
	ListActive(ctx context.Context) ([]*internal.Link, error)
	Add(ctx context.Context, in internal.LinkInput) (*internal.Link, error)
	Update(ctx context.Context, id string, patch internal.LinkPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Reorder(ctx context.Context, ids []string) error
}

type LinkHandler struct {
	links linkStore
}

func NewLinkHandler(links linkStore) *LinkHandler {
	return &LinkHandler{links: links}
}

type CreateLinkRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"isActive"`
	Category    string `json:"category"`
}

func (r *CreateLinkRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.URL) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and URL are required")
	}
	if r.Category != "" && !internal.Category(r.Category).Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Category must be one of: link, project")
	}
	return nil
}

func (r *CreateLinkRequest) toInput() internal.LinkInput {
	return internal.LinkInput{
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
		Icon:        r.Icon,
		IsActive:    lo.FromPtrOr(r.IsActive, true),
		Category:    internal.Category(lo.CoalesceOrEmpty(r.Category, string(internal.CategoryLink))),
	}
}

type ReorderRequest struct {
	LinkIDs []string `json:"linkIds"`
}

// ListLinks handles GET /links. A category filter wins over activeOnly.
func (h *LinkHandler) ListLinks(c echo.Context) error {
	ctx := c.Request().Context()
	category := c.QueryParam("category")
	activeOnly := c.QueryParam("activeOnly") == "true"

	var (
		links []*internal.Link
		err   error
	)
	switch {
	case category != "":
		links, err = h.links.ListByCategory(ctx, internal.Category(category))
	case activeOnly:
		links, err = h.links.ListActive(ctx)
	default:
		links, err = h.links.ListAll(ctx)
	}
	if err != nil {
		return internalError(err, "Failed to fetch links")
	}

	if links == nil {
		links = []*internal.Link{}
	}
	return respond(c, http.StatusOK, links)
}

func (h *LinkHandler) CreateLink(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	sanitized, err := icon.Sanitize(req.Icon)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Icon = sanitized

	link, err := h.links.Add(ctx, req.toInput())
	if err != nil {
		return internalError(err, "Failed to create link")
	}

	return respond(c, http.StatusCreated, link)
}

func (h *LinkHandler) UpdateLink(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var patch internal.LinkPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := validatePatch(&patch); err != nil {
		return err
	}

	found, err := h.links.Update(ctx, id, patch)
	if err != nil {
		return internalError(err, "Failed to update link")
	}
	if !found {
		log.Debug().Str("id", id).Msg("update target not found")
		return echo.NewHTTPError(http.StatusNotFound, "Link not found").SetInternal(internal.ErrLinkNotFound)
	}

	return okMessage(c, "Link updated successfully")
}

func validatePatch(patch *internal.LinkPatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title cannot be empty")
	}
	if patch.URL != nil && strings.TrimSpace(*patch.URL) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "URL cannot be empty")
	}
	if patch.Order != nil && *patch.Order < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Order cannot be negative")
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Category must be one of: link, project")
	}
	if patch.Icon != nil {
		sanitized, err := icon.Sanitize(*patch.Icon)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		patch.Icon = &sanitized
	}
	return nil
}

func (h *LinkHandler) DeleteLink(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	found, err := h.links.Delete(ctx, id)
	if err != nil {
		return internalError(err, "Failed to delete link")
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "Link not found").SetInternal(internal.ErrLinkNotFound)
	}

	return okMessage(c, "Link deleted successfully")
}

// ReorderLinks handles POST /links/reorder. Each id gets its index as order.
func (h *LinkHandler) ReorderLinks(c echo.Context) error {
	ctx := c.Request().Context()

	var req ReorderRequest
	if err := c.Bind(&req); err != nil || req.LinkIDs == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "linkIds must be an array")
	}

	if err := h.links.Reorder(ctx, req.LinkIDs); err != nil {
		return internalError(err, "Failed to reorder links")
	}

	return okMessage(c, "Links reordered successfully")
}
