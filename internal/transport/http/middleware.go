package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

const (
	contextUserKey      = "catalog.user_id"
	contextModeratorKey = "catalog.moderator"
)

// Authenticator turns a bearer token into the caller's user id. Role checks
// go through the identity store.
type Authenticator struct {
	tokens   *util.JWTManager
	identity ports.Identity
}

func NewAuthenticator(tokens *util.JWTManager, identity ports.Identity) *Authenticator {
	return &Authenticator{tokens: tokens, identity: identity}
}

func (a *Authenticator) userFromHeader(header string) (uuid.UUID, string) {
	if strings.TrimSpace(header) == "" {
		return uuid.Nil, "missing authorization header"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return uuid.Nil, "invalid authorization header"
	}
	claims, err := a.tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return uuid.Nil, err.Error()
	}
	return claims.UserID, ""
}

func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, problem := a.userFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if problem != "" {
				return c.JSON(http.StatusUnauthorized, util.Error(problem))
			}
			c.Set(contextUserKey, userID)
			return next(c)
		}
	}
}

// OptionalAuth records the caller when a valid token is present and lets
// anonymous requests through unchanged.
func (a *Authenticator) OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID, problem := a.userFromHeader(c.Request().Header.Get(echo.HeaderAuthorization)); problem == "" {
				c.Set(contextUserKey, userID)
			}
			return next(c)
		}
	}
}

// RequireModerator must run after RequireAuth.
func (a *Authenticator) RequireModerator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := CurrentUserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
			}
			isModerator, err := a.identity.IsModerator(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, util.Error("unable to verify role"))
			}
			if !isModerator {
				return c.JSON(http.StatusForbidden, util.Error("moderator privileges required"))
			}
			c.Set(contextModeratorKey, true)
			return next(c)
		}
	}
}

// CurrentUserID is uuid.Nil with ok=false for anonymous callers.
func CurrentUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(contextUserKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
