package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Enochrwa/wardrobe-system-backend/internal/config"
    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/repository"
    "github.com/Enochrwa/wardrobe-system-backend/internal/utils"
)

// UserStore is the part of repository.UserRepo the auth endpoints use.
type UserStore interface {
    Create(ctx context.Context, username, email, password string, cost int) (uint64, error)
    GetByLogin(ctx context.Context, login string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore is the part of repository.TokenRepo the auth endpoints use.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    Rotate(ctx context.Context, userID uint64, oldHash, newHash string, exp time.Time) error
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  UserStore
    Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
    if u == nil || t == nil {
        panic("nil repository passed to NewAuthHandler")
    }
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    Password string `json:"password"`
}

// loginReq accepts the email or the username in Login.
type loginReq struct {
    Login    string `json:"login"`
    Email    string `json:"email"`
    Password string `json:"password"`
}

type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

type authResp struct {
    User    model.User `json:"user"`
    Access  tokenPart  `json:"access"`
    Refresh tokenPart  `json:"refresh"`
}

// issue creates an access token and a stored refresh token for u.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        User:    u,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    req.Username = strings.TrimSpace(req.Username)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Username == "" || req.Email == "" || req.Password == "" {
        return badRequest(c, "username, email and password required")
    }
    if strings.Contains(req.Username, "@") || !strings.Contains(req.Email, "@") {
        return badRequest(c, "invalid username or email")
    }

    ctx, cancel := dbCtx(c)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
    switch {
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email or username already exists"})
    case errors.Is(err, utils.ErrWeakPassword):
        return badRequest(c, err.Error())
    case err != nil:
        return fail(c, err, "create user failed")
    }
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return fail(c, err, "load user failed")
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        return fail(c, err, "issue tokens failed")
    }
    return c.JSON(http.StatusCreated, resp)
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    login := strings.TrimSpace(req.Login)
    if login == "" {
        login = strings.TrimSpace(req.Email)
    }
    if login == "" || req.Password == "" {
        return badRequest(c, "login/password required")
    }

    ctx, cancel := dbCtx(c)
    defer cancel()

    u, err := h.Users.GetByLogin(ctx, login)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    if err != nil {
        return fail(c, err, "query failed")
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        return fail(c, err, "issue tokens failed")
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash and rotate; the old token stops working.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return badRequest(c, "refresh_token required")
    }
    oldHash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := dbCtx(c)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, oldHash)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    if err != nil {
        return fail(c, err, "validate refresh failed")
    }
    u, err := h.Users.GetByID(ctx, userID)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    if err != nil {
        return fail(c, err, "load user failed")
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.AccessTTLMin)
    if err != nil {
        return fail(c, err, "issue access failed")
    }
    newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return fail(c, err, "issue refresh failed")
    }
    if err := h.Tokens.Rotate(ctx, u.ID, oldHash, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            // lost a race with another refresh of the same token
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        return fail(c, err, "rotate refresh failed")
    }
    return c.JSON(http.StatusOK, authResp{
        User:    u,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
    })
}

// Logout revokes the refresh token in the body.  Without one, a valid
// bearer access token revokes every session of its user.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := dbCtx(c)
    defer cancel()

    if refreshToken != "" {
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            if errors.Is(err, repository.ErrNotFound) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
            }
            return fail(c, err, "logout failed")
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return fail(c, err, "logout failed")
        }
        return c.NoContent(http.StatusNoContent)
    }

    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return badRequest(c, "provide Authorization header or refresh_token")
    }
    claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
    if err != nil {
        return unauthorized(c)
    }
    uid, _ := claims.UserID()
    if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
        return fail(c, err, "logout failed")
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return fail(c, err, "load user failed")
    }
    return c.JSON(http.StatusOK, u)
}
