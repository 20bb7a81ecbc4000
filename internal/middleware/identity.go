package middleware

// identity.go holds the helpers that read the authenticated caller from
// the Echo context.  JWTAuth stores the user id under UserIDKey as a
// uint64; every other component reads it back through UserID.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserIDKey and UsernameKey are the context keys set by JWTAuth.
const (
    UserIDKey   = "user_id"
    UsernameKey = "username"
)

// UserID returns the authenticated user id, or false when the request
// did not pass through JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(UserIDKey).(uint64)
    return id, ok && id != 0
}

// subject renders the caller for cache and rate limit keys.  Anonymous
// callers share the "anon" bucket.
func subject(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
