package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Login accepts either the username or the email, both
// unique.  The password hash is never serialized.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique handle chosen at registration.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `json:"id"`         // users.id
    Username     string    `json:"username"`   // users.username
    Email        string    `json:"email"`      // users.email
    PasswordHash string    `json:"-"`          // users.password_hash
    CreatedAt    time.Time `json:"created_at"` // users.created_at
    UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}

// Profile holds the style preferences of a user (`user_profiles`).  A
// user without a row has the zero Profile: no preferences at all.
//
// Fields:
//  UserID          – owner, also the primary key.
//  PreferredStyles – free-form style words ("minimalist", "sporty").
//  PreferredColors – colors the scorer should favor.
//  AvoidedColors   – colors the scorer should penalize.
//  UpdatedAt       – timestamp of last update.
type Profile struct {
    UserID          uint64    `json:"user_id"`          // user_profiles.user_id
    PreferredStyles []string  `json:"preferred_styles"` // user_profiles.preferred_styles (JSON)
    PreferredColors []string  `json:"preferred_colors"` // user_profiles.preferred_colors (JSON)
    AvoidedColors   []string  `json:"avoided_colors"`   // user_profiles.avoided_colors (JSON)
    UpdatedAt       time.Time `json:"updated_at"`       // user_profiles.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
