package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var staffRoles = []string{"admin", "moderator"}

// AdminRequired admits either the static operator token or a moderator JWT
// (verified upstream by JWTProtected) carrying a staff role.
func AdminRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasAdminToken(c, cfg) {
			c.Locals("actor", "admin-token")
			return c.Next()
		}

		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}

		role, _ := claims["role"].(string)
		if contains(staffRoles, role) {
			email, _ := claims["email"].(string)
			c.Locals("actor", email)
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func hasAdminToken(c *fiber.Ctx, cfg *config.Config) bool {
	if cfg.AdminToken == "" {
		return false
	}
	got := c.Get("X-Admin-Token")
	return subtle.ConstantTimeCompare([]byte(got), []byte(cfg.AdminToken)) == 1
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
