// Package middleware contains HTTP middleware functions for the Cup Trip API.
// Middleware sits between the HTTP server and route handlers: it runs on every request that
// passes through it, making it the right place for cross-cutting concerns like authentication
// and role checks.
package middleware

import (
	"context"
	"fmt"
	"strings"

	// fiber is the HTTP framework; fiber.Handler is the function signature for middleware
	"github.com/gofiber/fiber/v2"
	// jwt parses and verifies the JSON Web Tokens (JWTs) Clerk issues
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trentd187/cup-trip/internal/config"
	"github.com/trentd187/cup-trip/internal/models"
)

// Keys under which Auth stores the current user in c.Locals.
const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
)

// Claims defines the data we expect inside a Clerk JWT payload.
// Clerk's default token includes standard fields (Subject = Clerk user ID, expiry, etc.).
// We also read custom claims added via the Clerk dashboard JWT template:
//
//	"role":  "{{user.public_metadata.role}}"   the user's permission level
//	"email": "{{user.primary_email_address}}"  used to populate our users table
//	"name":  "{{user.full_name}}"              display name for our users table
//
// Without these custom claims, role defaults to "player" and email/name use placeholders.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`  // Custom claim: "admin", "captain", or "player"
	Email string `json:"email"` // Custom claim: the user's primary email address
	Name  string `json:"name"`  // Custom claim: the user's full name
}

// UserSyncer finds or creates the local user for a Clerk identity.
type UserSyncer interface {
	SyncUser(ctx context.Context, clerkID, email, name string, role models.UserRole, roleFromToken bool) (*models.User, error)
}

// Auth returns a Fiber middleware handler that:
//  1. Parses the JWT from the "Authorization: Bearer <token>" header
//  2. Verifies its RS256 signature against cfg.ClerkJWTKey (development may run without a key,
//     in which case the signature is not checked)
//  3. Finds the matching user (or creates one on first visit) and syncs the role from the token
//  4. Stores the user's internal UUID and role in c.Locals for downstream handlers
//
// An unparsable key is a startup error, not a per-request one.
func Auth(cfg *config.Config, users UserSyncer) (fiber.Handler, error) {
	parse, err := tokenParser(cfg)
	if err != nil {
		return nil, err
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := parse(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		// Subject is the standard "sub" field; Clerk sets it to the Clerk user ID
		clerkUserID := claims.Subject
		if clerkUserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing subject",
			})
		}

		// Placeholders keep the users table's NOT NULL/unique constraints satisfied until the
		// JWT template is configured. They are deterministic per Clerk user.
		email := claims.Email
		if email == "" {
			email = fmt.Sprintf("%s@clerk.local", clerkUserID)
		}
		name := claims.Name
		if name == "" {
			name = "Golfer"
		}

		// Only a recognised role claim overrides the stored role; a typo must not demote anyone.
		role, known := roleFromClaim(claims.Role)
		if !known && claims.Role != "" {
			zerolog.Ctx(c.UserContext()).Warn().
				Str("clerk_id", clerkUserID).
				Str("role_claim", claims.Role).
				Msg("ignoring unrecognised role claim")
		}

		user, err := users.SyncUser(c.UserContext(), clerkUserID, email, name, role, known)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to sync user",
			})
		}

		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUserRole, string(user.Role))
		return c.Next()
	}, nil
}

// tokenParser returns the token parsing strategy for cfg.
func tokenParser(cfg *config.Config) (func(string) (*Claims, error), error) {
	if cfg.ClerkJWTKey == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("CLERK_JWT_KEY is required in %s", cfg.Env)
		}
		// Development only: accept any well-formed token without checking its signature.
		return func(tokenStr string) (*Claims, error) {
			claims := &Claims{}
			if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
				return nil, err
			}
			return claims, nil
		}, nil
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.ClerkJWTKey))
	if err != nil {
		return nil, fmt.Errorf("parse CLERK_JWT_KEY: %w", err)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return key, nil }

	return func(tokenStr string) (*Claims, error) {
		claims := &Claims{}
		if _, err := parser.ParseWithClaims(tokenStr, claims, keyFunc); err != nil {
			return nil, err
		}
		return claims, nil
	}, nil
}

// roleFromClaim converts the raw role claim into a UserRole. known is false for a missing or
// unrecognised claim, which falls back to player, the least privileged role.
func roleFromClaim(s string) (role models.UserRole, known bool) {
	switch r := models.UserRole(s); r {
	case models.UserRoleAdmin, models.UserRoleCaptain, models.UserRolePlayer:
		return r, true
	}
	return models.UserRolePlayer, false
}

// CurrentUser returns the user Auth stored on the request.
func CurrentUser(c *fiber.Ctx) (uuid.UUID, models.UserRole, bool) {
	idStr, _ := c.Locals(LocalUserID).(string)
	role, _ := c.Locals(LocalUserRole).(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, models.UserRole(role), true
}
