package model

import "time"

// PlanEntry assigns an outfit to a calendar day, optionally for a named
// occasion (`plan_entries`).  There is at most one entry per user and
// day; writing a day again replaces the previous assignment.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the entry.
//  Date      – planned day (UTC, time part zero).
//  Occasion  – occasion tag for the day (may be empty).
//  OutfitID  – outfit planned for the day.
//  Notes     – free text.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type PlanEntry struct {
    ID        uint64    `json:"id"`                 // plan_entries.id
    UserID    uint64    `json:"user_id"`            // plan_entries.user_id
    Date      time.Time `json:"date"`               // plan_entries.plan_date
    Occasion  string    `json:"occasion,omitempty"` // plan_entries.occasion
    OutfitID  uint64    `json:"outfit_id"`          // plan_entries.outfit_id
    Notes     string    `json:"notes,omitempty"`    // plan_entries.notes
    CreatedAt time.Time `json:"created_at"`         // plan_entries.created_at
    UpdatedAt time.Time `json:"updated_at"`         // plan_entries.updated_at
}

// DateOnly truncates t to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
