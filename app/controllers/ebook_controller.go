package controllers

import (
	"bytes"
	"errors"
	"image/jpeg"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/access"
	"github.com/bodhiverse/bodhika/internal/pkg/gate"
	"github.com/bodhiverse/bodhika/internal/pkg/metrics/counter"
	"github.com/bodhiverse/bodhika/internal/pkg/objectstore"
	"github.com/bodhiverse/bodhika/internal/pkg/upload"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
)

const (
	downloadURLTTL  = 15 * time.Minute
	coverURLTTL     = time.Hour
	coverThumbWidth = 480
)

func ebookView(e *models.EBook, coverURL string) fiber.Map {
	view := fiber.Map{
		"id":             e.ID,
		"title":          e.Title,
		"author":         e.Author,
		"file_type":      e.FileType,
		"is_active":      e.IsActive,
		"always_free":    e.AlwaysFree,
		"download_count": e.DownloadCount,
		"created_at":     e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if coverURL != "" {
		view["cover_url"] = coverURL
	}
	return view
}

func presignedCoverURL(c *fiber.Ctx, e *models.EBook) string {
	if e.CoverObjectKey == "" {
		return ""
	}
	store, err := objectstore.GetClient()
	if err != nil {
		return ""
	}
	url, err := store.PresignGet(c.Context(), e.CoverObjectKey, coverURLTTL)
	if err != nil {
		log.Printf("cover presign for ebook %d failed: %v", e.ID, err)
		return ""
	}
	return url
}

// HandleListEBooks lists ebooks. Admins see inactive records too.
func HandleListEBooks(c *fiber.Ctx) error {
	offset, limit := paginationParams(c)
	repo := repository.GetGlobalRepositories().EBook

	var (
		ebooks []models.EBook
		err    error
	)
	if usercontext.IsAdmin(c) {
		ebooks, err = repo.GetAll(offset, limit)
	} else {
		ebooks, err = repo.GetActive(offset, limit)
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	views := make([]fiber.Map, 0, len(ebooks))
	for i := range ebooks {
		views = append(views, ebookView(&ebooks[i], presignedCoverURL(c, &ebooks[i])))
	}
	return c.JSON(fiber.Map{"ebooks": views})
}

// HandleGetEBook returns one ebook's metadata.
func HandleGetEBook(c *fiber.Ctx) error {
	ebook, err := loadEBook(c)
	if err != nil {
		return err
	}
	return c.JSON(ebookView(ebook, presignedCoverURL(c, ebook)))
}

// HandleDownloadEBook runs the entitlement gate and, when it passes, counts
// the download and redirects to a short-lived presigned URL. The object key
// itself never reaches the client.
func HandleDownloadEBook(c *fiber.Ctx) error {
	ebook, err := loadEBook(c)
	if err != nil {
		return err
	}
	if !ebook.IsActive && !usercontext.IsAdmin(c) {
		return jsonError(c, fiber.StatusNotFound, "not_found")
	}

	userCtx := usercontext.GetUserContext(c)
	res := access.Result{}
	if userCtx.IsLoggedIn {
		if subs, serr := repository.GetGlobalRepositories().Subscription.GetActiveByUserID(userCtx.UserID); serr == nil {
			res = access.Evaluate(subs, time.Now())
		}
	}
	if !gate.CanAccess(gate.ForEBook(ebook), res) {
		return jsonError(c, fiber.StatusForbidden, "no_active_plan")
	}

	store, err := objectstore.GetClient()
	if err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "storage_unavailable")
	}
	url, err := store.PresignGet(c.Context(), ebook.ObjectKey, downloadURLTTL)
	if err != nil {
		log.Printf("presign for ebook %d failed: %v", ebook.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	if err := counter.AddEBookDownload(ebook.ID); err != nil {
		log.Printf("download counter for ebook %d failed: %v", ebook.ID, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"download_url": url,
		"expires_in":   int(downloadURLTTL.Seconds()),
		"content_type": upload.EBookContentType(ebook.FileType),
	})
}

// HandleCreateEBook ingests a multipart upload: the ebook file plus an
// optional cover image that is resized to a thumbnail before storage.
func HandleCreateEBook(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "file_required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_file")
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	head := buf.Bytes()
	if len(head) > 512 {
		head = head[:512]
	}
	contentType, err := upload.ValidateEBookBySniff(fileHeader.Filename, head)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_file", err.Error())
	}

	store, err := objectstore.GetClient()
	if err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "storage_unavailable")
	}

	cfg, err := objectstore.LoadConfig()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	now := time.Now()
	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	objectKey := cfg.EBookObjectKey(id, ext, now.Year(), int(now.Month()))
	if err := store.Upload(c.Context(), objectKey, bytes.NewReader(buf.Bytes()), contentType); err != nil {
		log.Printf("ebook upload failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "upload_failed")
	}

	coverKey := ""
	if coverHeader, cerr := c.FormFile("cover"); cerr == nil {
		coverKey, err = storeCoverThumbnail(c, coverHeader, cfg, store, id)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_cover", err.Error())
		}
	}

	ebook := &models.EBook{
		Title:          c.FormValue("title"),
		Author:         c.FormValue("author"),
		ObjectKey:      objectKey,
		CoverObjectKey: coverKey,
		FileType:       strings.TrimPrefix(ext, "."),
		IsActive:       c.FormValue("is_active", "true") != "false",
		AlwaysFree:     c.FormValue("always_free", "true") != "false",
	}
	if err := validate.Struct(ebook); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationDetails(err))
	}
	if err := repository.GetGlobalRepositories().EBook.Create(ebook); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.Status(fiber.StatusCreated).JSON(ebookView(ebook, presignedCoverURL(c, ebook)))
}

// storeCoverThumbnail validates, downsizes and uploads a cover image. Covers
// are normalized to JPEG thumbnails regardless of the uploaded format.
func storeCoverThumbnail(c *fiber.Ctx, header *multipart.FileHeader, cfg *objectstore.Config, store *objectstore.Client, id string) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return "", err
	}

	head := buf.Bytes()
	if len(head) > 512 {
		head = head[:512]
	}
	if _, err := upload.ValidateCoverBySniff(header.Filename, head); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(buf.Bytes()), imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}
	thumb := imaging.Fit(img, coverThumbWidth, coverThumbWidth*3/2, imaging.Lanczos)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}

	now := time.Now()
	coverKey := cfg.CoverObjectKey(id, now.Year(), int(now.Month()))
	if err := store.Upload(c.Context(), coverKey, bytes.NewReader(out.Bytes()), "image/jpeg"); err != nil {
		return "", err
	}
	return coverKey, nil
}

type ebookUpdateRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	IsActive   *bool  `json:"is_active"`
	AlwaysFree *bool  `json:"always_free"`
}

// HandleUpdateEBook edits metadata. File and cover are immutable after
// upload; replace means delete and re-create.
func HandleUpdateEBook(c *fiber.Ctx) error {
	ebook, err := loadEBook(c)
	if err != nil {
		return err
	}

	var req ebookUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}
	if req.Title != "" {
		ebook.Title = req.Title
	}
	if req.Author != "" {
		ebook.Author = req.Author
	}
	if req.IsActive != nil {
		ebook.IsActive = *req.IsActive
	}
	if req.AlwaysFree != nil {
		ebook.AlwaysFree = *req.AlwaysFree
	}
	if err := validate.Struct(ebook); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationDetails(err))
	}

	if err := repository.GetGlobalRepositories().EBook.Update(ebook); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.JSON(ebookView(ebook, presignedCoverURL(c, ebook)))
}

// HandleDeleteEBook removes the record and its stored objects best-effort.
func HandleDeleteEBook(c *fiber.Ctx) error {
	ebook, err := loadEBook(c)
	if err != nil {
		return err
	}

	if err := repository.GetGlobalRepositories().EBook.Delete(ebook.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	if store, serr := objectstore.GetClient(); serr == nil {
		if ebook.ObjectKey != "" {
			if derr := store.Delete(c.Context(), ebook.ObjectKey); derr != nil {
				log.Printf("object delete for ebook %d failed: %v", ebook.ID, derr)
			}
		}
		if ebook.CoverObjectKey != "" {
			if derr := store.Delete(c.Context(), ebook.CoverObjectKey); derr != nil {
				log.Printf("cover delete for ebook %d failed: %v", ebook.ID, derr)
			}
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

func loadEBook(c *fiber.Ctx) (*models.EBook, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}
	ebook, err := repository.GetGlobalRepositories().EBook.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found")
		}
		return nil, jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	return ebook, nil
}
