package database

import (
	"context"
	"database/sql"
)

// Schema statements, ordered parent-first so the FK references resolve.
// The cascade graph is explicit: deleting a user removes their books,
// deleting a book removes trades that reference it, and deleting a
// trade removes its notifications and ratings.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name          VARCHAR(100)    NOT NULL,
		email         VARCHAR(100)    NOT NULL,
		course        VARCHAR(50)     NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_active     TINYINT(1)      NOT NULL DEFAULT 1,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti        VARCHAR(64) NOT NULL,
		revoked_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (jti)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS books (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		owner_id        BIGINT UNSIGNED NOT NULL,
		title           VARCHAR(50)     NOT NULL,
		author          VARCHAR(50)     NOT NULL,
		genre           VARCHAR(50)     NOT NULL,
		publisher       VARCHAR(50)     NOT NULL,
		pages           INT             NOT NULL,
		year            INT             NOT NULL,
		synopsis        TEXT            NULL,
		cover_image_url VARCHAR(200)    NULL,
		created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_available    TINYINT(1)      NOT NULL DEFAULT 1,
		PRIMARY KEY (id),
		UNIQUE KEY uq_books_owner_title (owner_id, title),
		CONSTRAINT fk_books_owner FOREIGN KEY (owner_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS trades (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		offered_book_id BIGINT UNSIGNED NOT NULL,
		target_book_id  BIGINT UNSIGNED NOT NULL,
		requester_id    BIGINT UNSIGNED NOT NULL,
		status          ENUM('PENDING','ACCEPTED','REJECTED','CANCELLED','COMPLETED') NOT NULL DEFAULT 'PENDING',
		created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME        NULL,
		contact_email   VARCHAR(100)    NULL,
		contact_phone   VARCHAR(30)     NULL,
		PRIMARY KEY (id),
		KEY idx_trades_requester (requester_id),
		KEY idx_trades_target_book (target_book_id),
		CONSTRAINT fk_trades_offered FOREIGN KEY (offered_book_id) REFERENCES books (id) ON DELETE CASCADE,
		CONSTRAINT fk_trades_target FOREIGN KEY (target_book_id) REFERENCES books (id) ON DELETE CASCADE,
		CONSTRAINT fk_trades_requester FOREIGN KEY (requester_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		trade_id   BIGINT UNSIGNED NOT NULL,
		message    VARCHAR(500)    NOT NULL,
		is_read    TINYINT(1)      NOT NULL DEFAULT 0,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_notifications_user (user_id, created_at),
		CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_notifications_trade FOREIGN KEY (trade_id) REFERENCES trades (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS ratings (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		trade_id     BIGINT UNSIGNED NOT NULL,
		evaluator_id BIGINT UNSIGNED NOT NULL,
		evaluated_id BIGINT UNSIGNED NOT NULL,
		score        TINYINT         NOT NULL,
		comment      VARCHAR(500)    NOT NULL DEFAULT '',
		created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_ratings_trade_evaluator (trade_id, evaluator_id),
		KEY idx_ratings_evaluated (evaluated_id),
		CONSTRAINT fk_ratings_trade FOREIGN KEY (trade_id) REFERENCES trades (id) ON DELETE CASCADE,
		CONSTRAINT fk_ratings_evaluator FOREIGN KEY (evaluator_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_ratings_evaluated FOREIGN KEY (evaluated_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables at startup. Statements are
// idempotent; existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
