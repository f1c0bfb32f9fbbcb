package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/access"
	"github.com/bodhiverse/bodhika/internal/pkg/env"
	"github.com/bodhiverse/bodhika/internal/pkg/gate"
	"github.com/bodhiverse/bodhika/internal/pkg/metrics/counter"
	"github.com/bodhiverse/bodhika/internal/pkg/objectstore"
	"github.com/bodhiverse/bodhika/internal/pkg/security"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
)

const playbackURLTTL = 4 * time.Hour

func videoView(v *models.Video) fiber.Map {
	return fiber.Map{
		"id":          v.ID,
		"title":       v.Title,
		"description": v.Description,
		"type":        v.Type,
		"is_active":   v.IsActive,
		"always_free": v.AlwaysFree,
		"view_count":  v.ViewCount,
		"created_at":  v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleListVideos lists videos, optionally filtered by type.
func HandleListVideos(c *fiber.Ctx) error {
	offset, limit := paginationParams(c)
	repo := repository.GetGlobalRepositories().Video

	var (
		videos []models.Video
		err    error
	)
	if videoType := c.Query("type"); videoType != "" {
		videos, err = repo.GetByType(videoType, offset, limit)
	} else {
		videos, err = repo.GetAll(offset, limit)
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	views := make([]fiber.Map, 0, len(videos))
	for i := range videos {
		if !videos[i].IsActive && !usercontext.IsAdmin(c) {
			continue
		}
		views = append(views, videoView(&videos[i]))
	}
	return c.JSON(fiber.Map{"videos": views})
}

// HandleGetVideo returns one video's metadata.
func HandleGetVideo(c *fiber.Ctx) error {
	video, err := loadVideo(c)
	if err != nil {
		return err
	}
	return c.JSON(videoView(video))
}

// HandlePlayVideo runs the entitlement gate and returns the playback source:
// either an external player URL or a presigned object URL. A signed content
// token accompanies the response so downstream players can re-check the
// grant without another database round trip.
func HandlePlayVideo(c *fiber.Ctx) error {
	video, err := loadVideo(c)
	if err != nil {
		return err
	}
	if !video.IsActive && !usercontext.IsAdmin(c) {
		return jsonError(c, fiber.StatusNotFound, "not_found")
	}

	userCtx := usercontext.GetUserContext(c)
	res := access.Result{}
	if userCtx.IsLoggedIn {
		if subs, serr := repository.GetGlobalRepositories().Subscription.GetActiveByUserID(userCtx.UserID); serr == nil {
			res = access.Evaluate(subs, time.Now())
		}
	}
	if !gate.CanAccess(gate.ForVideo(video), res) {
		return jsonError(c, fiber.StatusForbidden, "no_active_plan")
	}

	playbackURL := video.PlaybackURL
	if playbackURL == "" && video.ObjectKey != "" {
		store, serr := objectstore.GetClient()
		if serr != nil {
			return jsonError(c, fiber.StatusServiceUnavailable, "storage_unavailable")
		}
		playbackURL, err = store.PresignGet(c.Context(), video.ObjectKey, playbackURLTTL)
		if err != nil {
			log.Printf("presign for video %d failed: %v", video.ID, err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_error")
		}
	}
	if playbackURL == "" {
		return jsonError(c, fiber.StatusNotFound, "no_playback_source")
	}

	token := ""
	if secret := env.GetEnv("APP_SECRET", ""); secret != "" {
		token, err = security.GenerateContentToken(userCtx.UserID, "video", video.ID, playbackURLTTL, secret)
		if err != nil {
			log.Printf("content token for video %d failed: %v", video.ID, err)
		}
	}

	if err := counter.AddVideoView(video.ID); err != nil {
		log.Printf("view counter for video %d failed: %v", video.ID, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"playback_url":  playbackURL,
		"content_token": token,
		"expires_in":    int(playbackURLTTL.Seconds()),
	})
}

type videoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	ObjectKey   string `json:"object_key"`
	PlaybackURL string `json:"playback_url"`
	IsActive    *bool  `json:"is_active"`
	AlwaysFree  *bool  `json:"always_free"`
}

// HandleCreateVideo registers a video record.
func HandleCreateVideo(c *fiber.Ctx) error {
	var req videoRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}

	video := &models.Video{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		ObjectKey:   req.ObjectKey,
		PlaybackURL: req.PlaybackURL,
		IsActive:    true,
	}
	if video.Type == "" {
		video.Type = models.VideoTypeSatsang
	}
	if req.IsActive != nil {
		video.IsActive = *req.IsActive
	}
	if req.AlwaysFree != nil {
		video.AlwaysFree = *req.AlwaysFree
	}
	if err := validate.Struct(video); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationDetails(err))
	}

	if err := repository.GetGlobalRepositories().Video.Create(video); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.Status(fiber.StatusCreated).JSON(videoView(video))
}

// HandleUpdateVideo edits a video record.
func HandleUpdateVideo(c *fiber.Ctx) error {
	video, err := loadVideo(c)
	if err != nil {
		return err
	}

	var req videoRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}
	if req.Title != "" {
		video.Title = req.Title
	}
	if req.Description != "" {
		video.Description = req.Description
	}
	if req.Type != "" {
		video.Type = req.Type
	}
	if req.ObjectKey != "" {
		video.ObjectKey = req.ObjectKey
	}
	if req.PlaybackURL != "" {
		video.PlaybackURL = req.PlaybackURL
	}
	if req.IsActive != nil {
		video.IsActive = *req.IsActive
	}
	if req.AlwaysFree != nil {
		video.AlwaysFree = *req.AlwaysFree
	}
	if err := validate.Struct(video); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationDetails(err))
	}

	if err := repository.GetGlobalRepositories().Video.Update(video); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.JSON(videoView(video))
}

// HandleDeleteVideo removes the record and its stored object best-effort.
func HandleDeleteVideo(c *fiber.Ctx) error {
	video, err := loadVideo(c)
	if err != nil {
		return err
	}

	if err := repository.GetGlobalRepositories().Video.Delete(video.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	if video.ObjectKey != "" {
		if store, serr := objectstore.GetClient(); serr == nil {
			if derr := store.Delete(c.Context(), video.ObjectKey); derr != nil {
				log.Printf("object delete for video %d failed: %v", video.ID, derr)
			}
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

func loadVideo(c *fiber.Ctx) (*models.Video, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}
	video, err := repository.GetGlobalRepositories().Video.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found")
		}
		return nil, jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	return video, nil
}
