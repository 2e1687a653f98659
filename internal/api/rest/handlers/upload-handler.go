package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/CodeCraftStudio/auth_service/internal/api/rest/middleware"
	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/helper"
	"github.com/CodeCraftStudio/auth_service/internal/helper/utils"
	"github.com/CodeCraftStudio/auth_service/internal/interfaces"
	"github.com/CodeCraftStudio/auth_service/internal/services"
	pkgutils "github.com/CodeCraftStudio/auth_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const (
	maxAvatarSize  = 5 * 1024 * 1024 // 5MB
	avatarMaxWidth = 800
	avatarQuality  = 85
)

type UploadHandler struct {
	svc      services.AuthService
	auth     helper.Auth
	uploader interfaces.Uploader
}

func NewUploadHandler(svc services.AuthService, authHelper helper.Auth, uploader interfaces.Uploader) *UploadHandler {
	return &UploadHandler{svc: svc, auth: authHelper, uploader: uploader}
}

func (h *UploadHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	user := api.Group("/user", middleware.AuthMiddleware(h.auth))

	user.Post("/profile/avatar", h.UploadAvatar)
}

// POST /api/user/profile/avatar
// form-data: file=<image>
func (h *UploadHandler) UploadAvatar(c *fiber.Ctx) error {
	if h.uploader == nil {
		return utils.ResponseError(c, fiber.StatusServiceUnavailable, "uploads are not configured")
	}

	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return utils.ResponseError(c, fiber.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ResponseError(c, fiber.StatusBadRequest, "file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowed[ext] {
		return utils.ResponseError(c, fiber.StatusBadRequest, "only jpg/jpeg/png/webp allowed")
	}

	if file.Size > maxAvatarSize {
		return utils.ResponseError(c, fiber.StatusBadRequest, "file too large (max 5MB)")
	}

	f, err := file.Open()
	if err != nil {
		return utils.ResponseError(c, fiber.StatusInternalServerError, "cannot open uploaded file")
	}
	defer f.Close()

	raw, err := pkgutils.ReadAllLimit(f, maxAvatarSize)
	if err != nil {
		return utils.ResponseError(c, fiber.StatusBadRequest, "file too large (max 5MB)")
	}

	normalized, err := pkgutils.NormalizeToJPG(raw, avatarMaxWidth, avatarQuality)
	if err != nil {
		return utils.ResponseError(c, fiber.StatusBadRequest, "could not decode image")
	}

	url, err := h.uploader.UploadBytes(c.UserContext(), "avatars", fmt.Sprintf("avatar_%s", userID), normalized)
	if err != nil {
		return utils.ResponseError(c, fiber.StatusInternalServerError, "avatar upload failed")
	}

	if err := h.svc.UpdateAvatar(c.UserContext(), userID, url); err != nil {
		return respondAuthError(c, err)
	}

	return utils.ResponseSuccess(c, fiber.StatusOK, fiber.Map{"url": url})
}
