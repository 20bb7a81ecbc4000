package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/utils"
)

// JWTAuth validates the Bearer access token of each request and stores
// the user id (uint64) and username in the context.  Requests without a
// valid token are answered with 401 before reaching the handler.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            // ParseAccessToken already rejected malformed subjects
            id, _ := claims.UserID()
            c.Set(UserIDKey, id)
            c.Set(UsernameKey, claims.Username)
            return next(c)
        }
    }
}
