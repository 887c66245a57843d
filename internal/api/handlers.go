// Package api exposes card generation and user settings over HTTP.
package api

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/youruser/pnlcard/internal/cards"
	imagepkg "github.com/youruser/pnlcard/internal/image"
	"github.com/youruser/pnlcard/internal/market"
	"github.com/youruser/pnlcard/internal/settings"
)

const (
	msgGenerateFailed = "Failed to generate card. Please try again later."
	msgNoColors       = "Provide at least one color to update."
	msgInvalidRequest = "Invalid request."
	msgInvalidColor   = "Colors must be hex values such as #00ff88."
	msgInvalidAmount  = "Cost and sells must be amounts below 1,000,000,000,000,000."

	defaultQRSize = 400
	maxQRSize     = 2048
)

type CardGenerator interface {
	GenerateFor(ctx context.Context, p cards.Payload) (path string, animated bool, err error)
}

type TitleResolver interface {
	ResolveTitle(ctx context.Context, code string) (string, error)
}

type SettingsStore interface {
	Get(ctx context.Context, userID string) (settings.Settings, error)
	Update(ctx context.Context, userID string, u settings.Update) (settings.Settings, error)
}

type ArtifactStore interface {
	Lookup(name string) (string, bool)
	Release(path string)
}

// Handler serves the card API.
type Handler struct {
	generator CardGenerator
	titles    TitleResolver
	settings  SettingsStore
	artifacts ArtifactStore
	log       zerolog.Logger
}

func NewHandler(generator CardGenerator, titles TitleResolver, store SettingsStore, artifacts ArtifactStore, log zerolog.Logger) *Handler {
	return &Handler{
		generator: generator,
		titles:    titles,
		settings:  store,
		artifacts: artifacts,
		log:       log.With().Str("component", "api").Logger(),
	}
}

func notFoundMessage(code string) string {
	return "Could not find market or event with code: **" + code + "**. Please check the ticker."
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type cardRequest struct {
	UserID string           `json:"user_id" binding:"required"`
	Market string           `json:"market" binding:"required"`
	Cost   *decimal.Decimal `json:"cost" binding:"required"`
	Sells  *decimal.Decimal `json:"sells" binding:"required"`
}

// createCard resolves the market title, applies the user's saved appearance
// and renders a card. The artifact is fetched separately and expires on its own.
func (h *Handler) createCard(c *gin.Context) {
	var req cardRequest
	if !h.bind(c, &req) {
		return
	}
	if !cards.ValidAmount(*req.Cost) || !cards.ValidAmount(*req.Sells) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidAmount})
		return
	}
	ctx := c.Request.Context()
	code := market.NormalizeCode(req.Market)

	title, err := h.titles.ResolveTitle(ctx, code)
	if err != nil {
		h.log.Info().Err(err).Str("code", code).Msg("Market lookup failed")
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(code)})
		return
	}

	s, err := h.settings.Get(ctx, req.UserID)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", req.UserID).Msg("Failed to load settings, using defaults")
		s = settings.Defaults()
	}

	payload := s.Payload(cards.Payload{
		MarketName: title,
		Cost:       *req.Cost,
		Sells:      *req.Sells,
	})

	path, animated, err := h.generator.GenerateFor(ctx, payload)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Bool("animated", imagepkg.IsAnimatedRef(payload.BackgroundURL)).Msg("Card generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenerateFailed})
		return
	}

	name := filepath.Base(path)
	h.log.Info().Str("code", code).Str("artifact", name).Bool("animated", animated).Msg("Card generated")
	c.JSON(http.StatusCreated, gin.H{
		"content":  cards.Summary(payload),
		"artifact": name,
		"url":      "/api/artifacts/" + name,
		"animated": animated,
	})
}

// downloadArtifact streams a card once and releases it.
func (h *Handler) downloadArtifact(c *gin.Context) {
	name := c.Param("name")
	path, ok := h.artifacts.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found or expired"})
		return
	}
	c.FileAttachment(path, name)
	h.artifacts.Release(path)
}

func (h *Handler) getSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Str("user_id", c.Param("id")).Msg("Failed to load settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) setBackground(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	url := settings.NormalizeBackground(req.URL)
	h.update(c, settings.Update{BackgroundURL: &url})
}

func (h *Handler) setColors(c *gin.Context) {
	var req struct {
		Background *string `json:"background"`
		Text       *string `json:"text"`
		Accent     *string `json:"accent"`
	}
	if !h.bind(c, &req) {
		return
	}
	u := settings.Update{BackgroundColor: req.Background, TextColor: req.Text, AccentColor: req.Accent}
	if u.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoColors})
		return
	}
	for _, v := range []*string{req.Background, req.Text, req.Accent} {
		if v == nil {
			continue
		}
		if _, err := cards.ParseHexColor(*v); err != nil {
			h.log.Debug().Err(err).Str("user_id", c.Param("id")).Msg("Rejected color update")
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidColor})
			return
		}
	}
	h.update(c, u)
}

func (h *Handler) setUsername(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	name := strings.TrimPrefix(strings.TrimSpace(req.Name), "@")
	h.update(c, settings.Update{Username: &name})
}

func (h *Handler) setAvatar(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	url := strings.TrimSpace(req.URL)
	h.update(c, settings.Update{AvatarURL: &url})
}

// bind decodes the JSON body into req. Decode and validation detail is logged,
// never returned to the client.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.log.Debug().Err(err).Str("path", c.FullPath()).Msg("Rejected request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
		return false
	}
	return true
}

func (h *Handler) update(c *gin.Context, u settings.Update) {
	s, err := h.settings.Update(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", c.Param("id")).Msg("Failed to save settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// marketQR returns a PNG QR code linking to the market page.
func (h *Handler) marketQR(c *gin.Context) {
	size := defaultQRSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		size = min(v, maxQRSize)
	}
	code := market.NormalizeCode(c.Param("code"))
	b, err := imagepkg.GenerateQRPNG(imagepkg.MarketLink(code), size)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("QR generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}
