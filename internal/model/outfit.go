package model

import "time"

// Outfit is an ordered combination of wardrobe items (`outfits` plus
// `outfit_items`, which keeps the position of each item).  Every item
// referenced by an outfit belongs to the outfit's owner.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the outfit.
//  Name      – display name.
//  ItemIDs   – referenced items in outfit order.
//  Occasion  – occasion tag the outfit was put together for (may be empty).
//  Tags      – free-form tags.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Outfit struct {
    ID        uint64    `json:"id"`                 // outfits.id
    UserID    uint64    `json:"user_id"`            // outfits.user_id
    Name      string    `json:"name"`               // outfits.name
    ItemIDs   []uint64  `json:"item_ids"`           // outfit_items.item_id ordered by position
    Occasion  string    `json:"occasion,omitempty"` // outfits.occasion
    Tags      []string  `json:"tags"`               // outfits.tags (JSON)
    CreatedAt time.Time `json:"created_at"`         // outfits.created_at
    UpdatedAt time.Time `json:"updated_at"`         // outfits.updated_at
}
