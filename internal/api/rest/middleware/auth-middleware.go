package middleware

import (
	"strings"

	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/helper"
	"github.com/CodeCraftStudio/auth_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

func AuthMiddleware(auth helper.Auth) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// 1) try cookie first
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))

		// 2) fallback to Authorization header
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
		}

		user, err := auth.VerifyToken(tokenStr)
		if err != nil {
			// one uniform response for missing, tampered, and expired
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": domain.ErrUnauthenticated.Error(),
			})
		}

		ctx.Locals("userID", user.UserID)
		ctx.Locals("role", user.Role)
		ctx.Locals("user", user)
		return ctx.Next()
	}
}

// AdminOnly re-checks the role against storage rather than trusting the
// token claim alone.
func AdminOnly(authSvc services.AuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, ok := ctx.Locals("userID").(string)
		if !ok || userID == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": domain.ErrUnauthenticated.Error(),
			})
		}

		user, err := authSvc.GetProfile(ctx.UserContext(), userID)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": domain.ErrUnauthenticated.Error(),
			})
		}

		if user.Role != domain.RoleAdmin {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin only",
			})
		}

		return ctx.Next()
	}
}
