package office

import (
	"context"

	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
)

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		phone TEXT,
		dob TEXT,
		status TEXT,
		last_activity TEXT,
		tags TEXT,
		notes TEXT,
		advisor_id INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS prospects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		source TEXT,
		email TEXT,
		interested INTEGER,
		follow_up TEXT,
		status TEXT,
		notes TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS fna_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER,
		reviewed_at TEXT,
		retirement_age REAL,
		risk_profile TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS fna_incomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fna_id INTEGER,
		description TEXT,
		amount REAL,
		frequency TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS fna_expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fna_id INTEGER,
		description TEXT,
		amount REAL,
		frequency TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS fna_assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fna_id INTEGER,
		description TEXT,
		value REAL,
		asset_type TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS fna_liabilities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fna_id INTEGER,
		description TEXT,
		balance REAL,
		rate REAL
	)`,
	`CREATE TABLE IF NOT EXISTS fna_policies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fna_id INTEGER,
		provider TEXT,
		policy_type TEXT,
		coverage REAL,
		premium REAL
	)`,
	`CREATE TABLE IF NOT EXISTS fna_goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fna_id INTEGER,
		description TEXT,
		target_amount REAL,
		target_date TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_last_activity ON clients(last_activity)`,
	`CREATE INDEX IF NOT EXISTS idx_fna_profiles_client ON fna_profiles(client_id)`,
}

// InitSchema creates the office tables. Safe to re-run.
func InitSchema(ctx context.Context, s *gateway.Store) error {
	return s.Exec(ctx, schemaDDL...)
}

// SeedDemo inserts a handful of demo rows into an empty database so the TUI
// has something to show after `canfs-admin init --demo`.
func SeedDemo(ctx context.Context, s *gateway.Store) error {
	return s.Exec(ctx,
		`INSERT INTO clients (first_name, last_name, email, phone, dob, status, last_activity, tags, notes)
		 SELECT 'John','Carter','john.carter@example.com','555-0101','1972-05-14T00:00:00Z','active','2024-03-01T10:00:00Z','retirement, insurance','Annual review booked'
		 WHERE NOT EXISTS (SELECT 1 FROM clients)`,
		`INSERT INTO clients (first_name, last_name, email, phone, dob, status, last_activity, tags, notes)
		 SELECT 'Mary','Nguyen','mary.n@example.com','555-0102','1985-11-02T00:00:00Z','active','2024-02-20T15:30:00Z','super',''
		 WHERE (SELECT COUNT(*) FROM clients) = 1`,
		`INSERT INTO prospects (name, source, email, interested, follow_up, status, notes)
		 SELECT 'Alan Reid','referral','alan.reid@example.com',1,'2024-03-15T09:00:00Z','contacted','Met at seminar'
		 WHERE NOT EXISTS (SELECT 1 FROM prospects)`,
	)
}
