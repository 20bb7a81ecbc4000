package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates every table the service uses.  Statements are
// idempotent; there is no migration history.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id          BIGINT UNSIGNED PRIMARY KEY,
		preferred_styles TEXT     NOT NULL,
		preferred_colors TEXT     NOT NULL,
		avoided_colors   TEXT     NOT NULL,
		updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_user_profiles_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS wardrobe_items (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(255)    NOT NULL,
		brand      VARCHAR(255)    NOT NULL DEFAULT '',
		category   VARCHAR(64)     NOT NULL,
		colors     TEXT            NOT NULL,
		seasons    TEXT            NOT NULL,
		tags       TEXT            NOT NULL,
		favorite   BOOLEAN         NOT NULL DEFAULT FALSE,
		times_worn INT             NOT NULL DEFAULT 0,
		last_worn  DATETIME        NULL,
		created_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_wardrobe_items_user_category (user_id, category),
		CONSTRAINT fk_wardrobe_items_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS outfits (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(255)    NOT NULL,
		occasion   VARCHAR(32)     NOT NULL DEFAULT '',
		tags       TEXT            NOT NULL,
		created_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_outfits_user (user_id),
		CONSTRAINT fk_outfits_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS outfit_items (
		outfit_id BIGINT UNSIGNED NOT NULL,
		item_id   BIGINT UNSIGNED NOT NULL,
		position  INT             NOT NULL,
		PRIMARY KEY (outfit_id, position),
		KEY idx_outfit_items_item (item_id),
		CONSTRAINT fk_outfit_items_outfit FOREIGN KEY (outfit_id) REFERENCES outfits(id) ON DELETE CASCADE,
		CONSTRAINT fk_outfit_items_item FOREIGN KEY (item_id) REFERENCES wardrobe_items(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS plan_entries (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		plan_date  DATE            NOT NULL,
		occasion   VARCHAR(32)     NOT NULL DEFAULT '',
		outfit_id  BIGINT UNSIGNED NOT NULL,
		notes      TEXT            NOT NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_plan_entries_user_date (user_id, plan_date),
		CONSTRAINT fk_plan_entries_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_plan_entries_outfit FOREIGN KEY (outfit_id) REFERENCES outfits(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS style_history (
		id        BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id   BIGINT UNSIGNED NOT NULL,
		item_id   BIGINT UNSIGNED NULL,
		outfit_id BIGINT UNSIGNED NULL,
		worn_at   DATETIME        NOT NULL,
		notes     TEXT            NOT NULL,
		KEY idx_style_history_user_worn (user_id, worn_at),
		CONSTRAINT fk_style_history_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS occasions (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id       BIGINT UNSIGNED NOT NULL,
		name          VARCHAR(255)    NOT NULL,
		occasion_date DATETIME        NULL,
		outfit_id     BIGINT UNSIGNED NULL,
		notes         TEXT            NOT NULL,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_occasions_user_date (user_id, occasion_date),
		CONSTRAINT fk_occasions_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_occasions_outfit FOREIGN KEY (outfit_id) REFERENCES outfits(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Bootstrap creates missing tables in dependency order.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap statement %d: %w", i+1, err)
		}
	}
	return nil
}
