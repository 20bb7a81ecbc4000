package model

import "time"

// StyleHistoryRecord is one wear event (`style_history`).  Exactly one
// of ItemID and OutfitID is set.  Records are append-only: they are
// inserted and read, never updated or deleted.
//
// Fields:
//  ID       – primary key identifier.
//  UserID   – who wore it.
//  ItemID   – single item worn (nullable).
//  OutfitID – outfit worn (nullable).
//  WornAt   – when it was worn.
//  Notes    – free text.
type StyleHistoryRecord struct {
    ID       uint64    `json:"id"`                  // style_history.id
    UserID   uint64    `json:"user_id"`             // style_history.user_id
    ItemID   *uint64   `json:"item_id,omitempty"`   // style_history.item_id (nullable)
    OutfitID *uint64   `json:"outfit_id,omitempty"` // style_history.outfit_id (nullable)
    WornAt   time.Time `json:"worn_at"`             // style_history.worn_at
    Notes    string    `json:"notes,omitempty"`     // style_history.notes
}
