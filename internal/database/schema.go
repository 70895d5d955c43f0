package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ddl holds the CREATE TABLE statements for every table the service
// owns. Order matters: booking_history references bookings via a
// cascading foreign key, so bookings must exist first.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(50) NOT NULL,
		preferred_date DATE NOT NULL,
		participants INT NOT NULL DEFAULT 1,
		booking_type VARCHAR(50) NOT NULL,
		course_id VARCHAR(255),
		dive_site_id VARCHAR(255),
		special_requests TEXT,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_email (email),
		INDEX idx_date (preferred_date),
		INDEX idx_status (status),
		INDEX idx_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS availability (
		id INT AUTO_INCREMENT PRIMARY KEY,
		date DATE NOT NULL UNIQUE,
		total_slots INT NOT NULL DEFAULT 20,
		booked_slots INT NOT NULL DEFAULT 0,
		available_slots INT GENERATED ALWAYS AS (total_slots - booked_slots) STORED,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_date (date),
		INDEX idx_available (available_slots)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS booking_history (
		id INT AUTO_INCREMENT PRIMARY KEY,
		booking_id INT NOT NULL,
		action VARCHAR(50) NOT NULL,
		old_status VARCHAR(50),
		new_status VARCHAR(50),
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
		INDEX idx_booking (booking_id),
		INDEX idx_action (action)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS contacts (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(50),
		subject VARCHAR(255),
		message TEXT NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'new',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_email (email),
		INDEX idx_status (status),
		INDEX idx_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'ADMIN',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// EnsureSchema creates all tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// SeedAvailability provisions one availability row per day for the
// given horizon starting today, each with the given capacity. It is a
// no-op when the table already has rows, so re-running dbinit against
// a live database never resets booked counters.
func SeedAvailability(ctx context.Context, db *sql.DB, days, slotsPerDay int) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM availability`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, days)
	args := make([]interface{}, 0, days*2)
	today := time.Now().UTC()
	for i := 0; i < days; i++ {
		placeholders = append(placeholders, "(?, ?, 0)")
		args = append(args, today.AddDate(0, 0, i).Format("2006-01-02"), slotsPerDay)
	}
	q := `INSERT INTO availability (date, total_slots, booked_slots) VALUES ` +
		strings.Join(placeholders, ",")
	if _, err := db.ExecContext(ctx, q, args...); err != nil {
		return 0, err
	}
	return days, nil
}
