package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spad0x/smartcloset-server/config"
	"github.com/spad0x/smartcloset-server/database"
	"github.com/spad0x/smartcloset-server/logging"
	"github.com/spad0x/smartcloset-server/metrics"
	"github.com/spad0x/smartcloset-server/models"
	"github.com/spad0x/smartcloset-server/storage"
)

// ClothesRepository is the row store the handler needs.
type ClothesRepository interface {
	Create(ctx context.Context, item *models.ClothingItem) error
	ListByUser(ctx context.Context, userID string) ([]models.ClothingItem, error)
	FindByImageURL(ctx context.Context, userID, imageURL string) (*models.ClothingItem, error)
	DeleteByImageURL(ctx context.Context, userID, imageURL string) (int64, error)
}

type ClothesHandler struct {
	repo    ClothesRepository
	images  storage.ImageStore
	profile config.Profile
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewClothesHandler(repo ClothesRepository, images storage.ImageStore, profile config.Profile, m *metrics.Metrics) *ClothesHandler {
	return &ClothesHandler{
		repo:    repo,
		images:  images,
		profile: profile,
		metrics: m,
		log:     logging.For("handlers"),
		now:     time.Now,
	}
}

// CreateClothRequest is the POST /clothes body. Fields stay raw so any JSON
// value is accepted; a missing key or null reads as absent.
type CreateClothRequest struct {
	UserID      json.RawMessage `json:"user_id"`
	ImageBase64 json.RawMessage `json:"image_base64"`
	Category    json.RawMessage `json:"category"`
	Color       json.RawMessage `json:"color"`
	Season      json.RawMessage `json:"season"`
}

type ClothResponse struct {
	ID       uint   `json:"id"`
	ImageURL string `json:"image_url"`
	Category string `json:"category"`
	Season   string `json:"season"`
}

func Home(c *fiber.Ctx) error {
	return c.SendString("SmartCloset Server (Lite) is Running!")
}

func (h *ClothesHandler) Create(c *fiber.Ctx) error {
	var req CreateClothRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Missing data")
	}
	userID, _ := fieldText(req.UserID)
	imageBase64, _ := fieldText(req.ImageBase64)
	if userID == "" || imageBase64 == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing data")
	}

	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	ctx := c.UserContext()
	filename := storage.NewFilename(h.profile.Extension, h.now())

	imageURL, err := h.images.Save(ctx, filename, data)
	if err != nil {
		h.log.Error().Err(err).Str(logging.File, filename).Msg("image save failed")
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	h.metrics.ImageBytesWritten.Add(float64(len(data)))

	item := &models.ClothingItem{
		UserID:   userID,
		ImageURL: imageURL,
		Category: valueOr(req.Category, h.profile.DefaultCategory),
		Color:    valueOr(req.Color, ""),
		Season:   valueOr(req.Season, config.DefaultSeason),
	}
	if err := h.repo.Create(ctx, item); err != nil {
		h.log.Error().Err(err).Str(logging.ImageURL, imageURL).Msg("item insert failed, image left in store")
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	h.metrics.ItemsCreated.Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item saved",
		"url":     imageURL,
	})
}

func (h *ClothesHandler) List(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "User ID missing")
	}

	items, err := h.repo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	results := make([]ClothResponse, 0, len(items))
	for _, item := range items {
		results = append(results, ClothResponse{
			ID:       item.ID,
			ImageURL: item.ImageURL,
			Category: item.Category,
			Season:   item.Season,
		})
	}

	return c.Status(fiber.StatusOK).JSON(results)
}

func (h *ClothesHandler) Delete(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	imageURL := c.Query("image_url")
	if userID == "" || imageURL == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing parameters")
	}

	ctx := c.UserContext()

	if _, err := h.repo.FindByImageURL(ctx, userID, imageURL); err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Item not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	h.removeImage(ctx, userID, imageURL)

	n, err := h.repo.DeleteByImageURL(ctx, userID, imageURL)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	h.metrics.ItemsDeleted.Add(float64(n))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Deleted successfully"})
}

// removeImage deletes the stored image. Failures are logged only; the row is
// what decides whether the item exists.
func (h *ClothesHandler) removeImage(ctx context.Context, userID, imageURL string) {
	log := h.log.With().Str(logging.UserID, userID).Str(logging.ImageURL, imageURL).Logger()

	err := h.images.Remove(ctx, imageURL)
	switch {
	case err == nil:
		h.metrics.ImageRemovals.WithLabelValues(metrics.RemovalRemoved).Inc()
		log.Info().Msg("image removed")
	case errors.Is(err, storage.ErrImageNotFound):
		h.metrics.ImageRemovals.WithLabelValues(metrics.RemovalMissing).Inc()
		log.Info().Err(err).Msg("image already absent, skipped")
	default:
		h.metrics.ImageRemovals.WithLabelValues(metrics.RemovalFailed).Inc()
		log.Warn().Err(err).Msg("image removal failed")
	}
}

// fieldText renders a JSON value as stored text: strings unquoted, anything
// else as its compact JSON. ok is false for a missing key or null.
func fieldText(raw json.RawMessage) (text string, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s, true
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed), true
	}
	return buf.String(), true
}

func valueOr(raw json.RawMessage, fallback string) string {
	if text, ok := fieldText(raw); ok {
		return text
	}
	return fallback
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
