package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		reservation_id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		first_name       VARCHAR(255)    NOT NULL,
		last_name        VARCHAR(255)    NOT NULL,
		mobile_number    VARCHAR(32)     NOT NULL,
		reservation_date DATE            NOT NULL,
		reservation_time TIME            NOT NULL,
		people           INT UNSIGNED    NOT NULL,
		status           VARCHAR(16)     NOT NULL DEFAULT 'booked',
		created_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (reservation_id),
		KEY idx_reservations_date (reservation_date, reservation_time),
		KEY idx_reservations_mobile (mobile_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tables (
		table_id       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		table_name     VARCHAR(255)    NOT NULL,
		capacity       INT UNSIGNED    NOT NULL,
		reservation_id BIGINT UNSIGNED NULL,
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (table_id),
		CONSTRAINT fk_tables_reservation FOREIGN KEY (reservation_id)
			REFERENCES reservations (reservation_id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the reservations and tables tables when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
