package model

import "time"

// Item is a single piece of clothing or accessory in a user's
// wardrobe (`wardrobe_items`).  Colors, Seasons and Tags are stored as
// JSON arrays in text columns.  CreatedAt doubles as the "date added"
// used to break ties between equally scored recommendations.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the item.
//  Name      – display name ("red linen shirt").
//  Brand     – optional brand.
//  Category  – top, bottom, footwear, outerwear, accessory, dress…
//  Colors    – color names, dominant color first.
//  Seasons   – season tags (summer, winter, spring, autumn, all).
//  Tags      – free-form tags.
//  Favorite  – user marked the item as a favorite.
//  TimesWorn – number of recorded wears.
//  LastWorn  – when the item was last worn (null if never).
//  CreatedAt – when the item was added.
//  UpdatedAt – last update timestamp.
type Item struct {
    ID        uint64     `json:"id"`                  // wardrobe_items.id
    UserID    uint64     `json:"user_id"`             // wardrobe_items.user_id
    Name      string     `json:"name"`                // wardrobe_items.name
    Brand     string     `json:"brand,omitempty"`     // wardrobe_items.brand
    Category  string     `json:"category"`            // wardrobe_items.category
    Colors    []string   `json:"colors"`              // wardrobe_items.colors (JSON)
    Seasons   []string   `json:"seasons"`             // wardrobe_items.seasons (JSON)
    Tags      []string   `json:"tags"`                // wardrobe_items.tags (JSON)
    Favorite  bool       `json:"favorite"`            // wardrobe_items.favorite
    TimesWorn int        `json:"times_worn"`          // wardrobe_items.times_worn
    LastWorn  *time.Time `json:"last_worn,omitempty"` // wardrobe_items.last_worn (nullable)
    CreatedAt time.Time  `json:"created_at"`          // wardrobe_items.created_at
    UpdatedAt time.Time  `json:"updated_at"`          // wardrobe_items.updated_at
}
