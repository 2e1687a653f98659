package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Auth struct {
	Secret string
}

func SetupAuth(s string) Auth {
	return Auth{
		Secret: s,
	}
}

// GenerateToken issues the stateless session payload. It carries the
// resolved account id and role plus standard expiry claims; everything
// else is re-checked against storage when it matters.
func (a Auth) GenerateToken(userID string, email string, role domain.Role) (string, error) {
	if userID == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now().Unix()
	exp := time.Now().Add(24 * time.Hour).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"iat":   now,
		"exp":   exp,
	})

	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}

	return tokenStr, nil
}

// VerifyToken validates signature and expiry. Every failure collapses to
// domain.ErrUnauthenticated so a caller cannot tell tampered from expired.
func (a Auth) VerifyToken(tokenString string) (dto.AuthResponse, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return dto.AuthResponse{}, domain.ErrUnauthenticated
	}

	// support both:
	// - "Bearer <token>"
	// - "<token>"
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return dto.AuthResponse{}, domain.ErrUnauthenticated
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	})
	if err != nil || !token.Valid {
		return dto.AuthResponse{}, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return dto.AuthResponse{}, domain.ErrUnauthenticated
	}

	expAny, ok := claims["exp"]
	if !ok {
		return dto.AuthResponse{}, domain.ErrUnauthenticated
	}
	expFloat, ok := expAny.(float64)
	if !ok || float64(time.Now().Unix()) > expFloat {
		return dto.AuthResponse{}, domain.ErrUnauthenticated
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	iat, _ := claims["iat"].(float64)
	if sub == "" || role == "" {
		return dto.AuthResponse{}, domain.ErrUnauthenticated
	}

	return dto.AuthResponse{
		UserID: sub,
		Email:  email,
		Role:   role,
		Expiry: expFloat,
		Iat:    iat,
	}, nil
}

func (a Auth) GetCurrentUser(ctx *fiber.Ctx) (dto.AuthResponse, error) {
	u := ctx.Locals("user")
	claims, ok := u.(dto.AuthResponse)
	if !ok {
		return dto.AuthResponse{}, domain.ErrUnauthenticated
	}
	return claims, nil
}

// VerifyPassword runs the bcrypt comparison (constant time by construction).
func (a Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword(
		[]byte(hashed),
		[]byte(plain),
	); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}
