package model

import "time"

// Occasion is an event the user is dressing for (`occasions`), such as
// "wedding guest" on a given day.  An outfit may be assigned to it.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the occasion.
//  Name      – free-form name, also used as the occasion tag for suggestions.
//  Date      – when it takes place (nullable).
//  OutfitID  – outfit picked for it (nullable).
//  Notes     – free text.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Occasion struct {
    ID        uint64     `json:"id"`                  // occasions.id
    UserID    uint64     `json:"user_id"`             // occasions.user_id
    Name      string     `json:"name"`                // occasions.name
    Date      *time.Time `json:"date,omitempty"`      // occasions.occasion_date (nullable)
    OutfitID  *uint64    `json:"outfit_id,omitempty"` // occasions.outfit_id (nullable)
    Notes     string     `json:"notes,omitempty"`     // occasions.notes
    CreatedAt time.Time  `json:"created_at"`          // occasions.created_at
    UpdatedAt time.Time  `json:"updated_at"`          // occasions.updated_at
}
