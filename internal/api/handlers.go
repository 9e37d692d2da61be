package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scsmash3r/fresh-seo/internal/manifest"
	"github.com/scsmash3r/fresh-seo/internal/models"
	"github.com/scsmash3r/fresh-seo/internal/sitemap"
	"github.com/scsmash3r/fresh-seo/internal/storage"
	"github.com/scsmash3r/fresh-seo/internal/utils"
)

type Handler struct {
	store     storage.Store
	baseURL   string
	manifest  *manifest.Manifest
	overrides []models.Override
	staticDir string
	ignore    []string
	logger    *utils.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewHandler(opts Options, logger *utils.Logger) *Handler {
	return &Handler{
		store:     opts.Store,
		baseURL:   opts.BaseURL,
		manifest:  opts.Manifest,
		overrides: opts.Overrides,
		staticDir: opts.StaticDir,
		ignore:    opts.Ignore,
		logger:    logger,
	}
}

// buildSitemap creates a fresh context per request; contexts are not shared
// between goroutines.
func (h *Handler) buildSitemap(ctx context.Context) (*sitemap.Context, error) {
	opts := []sitemap.Option{sitemap.WithLogger(h.logger)}
	if h.ignore != nil {
		opts = append(opts, sitemap.WithIgnore(h.ignore...))
	}

	sm := sitemap.New(h.baseURL, h.manifest, opts...)
	for _, o := range h.overrides {
		sm.Apply(o)
	}

	if h.store == nil {
		return sm, nil
	}

	stored, err := h.store.ListOverrides(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range stored {
		sm.Apply(*o)
	}
	return sm, nil
}

func (h *Handler) Sitemap(c *gin.Context) {
	sm, err := h.buildSitemap(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load overrides")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build sitemap"})
		return
	}

	sm.Render(c.Writer)
}

func (h *Handler) ListRoutes(c *gin.Context) {
	sm, err := h.buildSitemap(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load overrides")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build sitemap"})
		return
	}

	c.JSON(http.StatusOK, sm.Routes())
}

func (h *Handler) SaveSitemap(c *gin.Context) {
	if h.staticDir == "" {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Static directory is not configured"})
		return
	}

	sm, err := h.buildSitemap(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load overrides")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build sitemap"})
		return
	}

	// Save is best effort; failures only show up in the log.
	sm.Save(h.staticDir)
	c.JSON(http.StatusAccepted, gin.H{"status": "saved", "routes": len(sm.Routes())})
}

func (h *Handler) ListOverrides(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	overrides, err := h.store.ListOverrides(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch overrides"})
		return
	}

	if overrides == nil {
		overrides = []*models.Override{}
	}

	c.JSON(http.StatusOK, overrides)
}

func (h *Handler) GetOverride(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid override ID"})
		return
	}

	override, err := h.store.GetOverride(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch override"})
		return
	}

	if override == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Override not found"})
		return
	}

	c.JSON(http.StatusOK, override)
}

func (h *Handler) CreateOverride(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	var override models.Override
	if err := c.ShouldBindJSON(&override); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid override data"})
		return
	}

	if err := override.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	created := models.NewOverride(override.Action, override.Route)
	created.ChangeFreq = override.ChangeFreq
	created.Priority = override.Priority
	created.LastMod = override.LastMod

	if err := h.store.CreateOverride(c.Request.Context(), created); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Override already exists"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to create override")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create override"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) DeleteOverride(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid override ID"})
		return
	}

	if err := h.store.DeleteOverride(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Override not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete override"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) requireStore(c *gin.Context) bool {
	if h.store != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Override storage is not configured"})
	return false
}
