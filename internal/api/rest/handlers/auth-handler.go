package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/CodeCraftStudio/auth_service/internal/api/rest/middleware"
	"github.com/CodeCraftStudio/auth_service/internal/auth/google"
	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/dto"
	"github.com/CodeCraftStudio/auth_service/internal/helper"
	"github.com/CodeCraftStudio/auth_service/internal/helper/utils"
	"github.com/CodeCraftStudio/auth_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	svc    services.AuthService
	auth   helper.Auth
	google *google.Provider
}

func NewAuthHandler(svc services.AuthService, authHelper helper.Auth, googleProvider *google.Provider) *AuthHandler {
	return &AuthHandler{svc: svc, auth: authHelper, google: googleProvider}
}

func (h *AuthHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	user := api.Group("/user")

	// Auth (public)
	user.Post("/register", h.Register)
	user.Post("/login", h.Login)
	user.Get("/google/login", h.GoogleLogin)
	user.Get("/google/callback", h.GoogleCallback)

	// Profile (token required)
	protected := user.Group("", middleware.AuthMiddleware(h.auth))
	protected.Get("/me", h.Me)
}

// POST /api/user/register
// body: {name, email?, phone?, password, provider}
func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "please provide valid inputs")
	}

	userID, err := h.svc.Register(ctx.UserContext(), requestBody)
	if err != nil {
		return respondAuthError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		Message: "User created successfully",
		UserID:  userID,
	})
}

// POST /api/user/login
// body: {email | phone, password}; exactly one identifier
func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email or phone and password are required")
	}

	var (
		kind       domain.IdentifierKind
		identifier string
	)
	switch {
	case requestBody.Email != "" && requestBody.Phone != "":
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "provide either email or phone, not both")
	case requestBody.Email != "":
		kind, identifier = domain.IdentifierEmail, requestBody.Email
	case requestBody.Phone != "":
		kind, identifier = domain.IdentifierPhone, requestBody.Phone
	default:
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email or phone is required")
	}

	user, err := h.svc.Login(ctx.UserContext(), kind, identifier, requestBody.Password)
	if err != nil {
		return respondAuthError(ctx, err)
	}

	return h.respondWithSession(ctx, user)
}

// GET /api/user/google/login
func (h *AuthHandler) GoogleLogin(ctx *fiber.Ctx) error {
	if h.google == nil {
		return utils.ResponseError(ctx, fiber.StatusServiceUnavailable, "google sign-in is not configured")
	}

	state, err := utils.RandomSecret(16)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "could not start sign-in")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return ctx.Redirect(h.google.AuthCodeURL(state), fiber.StatusFound)
}

// GET /api/user/google/callback?code=...&state=...
func (h *AuthHandler) GoogleCallback(ctx *fiber.Ctx) error {
	if h.google == nil {
		return utils.ResponseError(ctx, fiber.StatusServiceUnavailable, "google sign-in is not configured")
	}

	state := ctx.Query("state")
	if state == "" || state != ctx.Cookies("oauth_state") {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}
	ctx.ClearCookie("oauth_state")

	code := ctx.Query("code")
	if code == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "missing authorization code")
	}

	identity, err := h.google.ExchangeCode(ctx.UserContext(), code)
	if err != nil {
		log.Printf("google exchange failed: %v", err)
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}
	if !identity.EmailVerified {
		log.Printf("google identity %s has unverified email", identity.Subject)
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}

	user, outcome, err := h.svc.ResolveGoogleIdentity(ctx.UserContext(), *identity)
	if err != nil {
		return respondAuthError(ctx, err)
	}
	log.Printf("google sign-in resolved user %s (%s)", user.ID, outcome)

	return h.respondWithSession(ctx, user)
}

// GET /api/user/me
func (h *AuthHandler) Me(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}

	user, err := h.svc.GetProfile(ctx.UserContext(), claims.UserID)
	if err != nil {
		return respondAuthError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, profileResponse(user))
}

func (h *AuthHandler) respondWithSession(ctx *fiber.Ctx, user *domain.User) error {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	token, err := h.auth.GenerateToken(user.ID, email, user.Role)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "could not generate token")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.LoginResponse{
		Token: token,
		User:  profileResponse(user),
	})
}

func profileResponse(user *domain.User) dto.UserProfileResponse {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	return dto.UserProfileResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: email,
		Image: user.Image,
		Role:  string(user.Role),
	}
}

// respondAuthError maps the shared error taxonomy to HTTP codes. Internal
// causes are already logged where they happened; callers only see these.
func respondAuthError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return utils.ResponseError(ctx, fiber.StatusConflict, domain.ErrConflict.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	case errors.Is(err, domain.ErrNotFound):
		return utils.ResponseError(ctx, fiber.StatusNotFound, domain.ErrNotFound.Error())
	default:
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal server error")
	}
}
