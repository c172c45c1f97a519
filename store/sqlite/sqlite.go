/*
Package sqlite provides the SQLite-backed store for the HR ledger.

PURPOSE:
  Implements the ledger.Store interface plus the account and profile
  queries the API layer needs. The same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  users:             Authentication principals (unique email)
  employees:         HR profiles, soft-deleted via is_active
  leave_balances:    One row per (employee, year, month) - unique index
  leave_adjustments: Append-only adjustment log
  sick_days:         One row per (employee, year) - unique index
  audit_logs:        Append-only audit trail

INVARIANT ENFORCEMENT:
  idx_balances_employee_month makes duplicate month rows impossible; a
  conflicting insert surfaces as ledger.ErrBalanceExists so the resolver
  can retry as a read. IncrementBalance applies deltas with a single
  UPDATE (closing = closing + ?, hr_adjustments = hr_adjustments + ?), so
  concurrent adjustments never lose updates. leave_adjustments and
  audit_logs have no UPDATE or DELETE statements anywhere in this package.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode, matching the
  single-process deployment. With PostgreSQL, database-level concurrency
  control would handle this instead.

USAGE:
  store, err := sqlite.New("./data/hr.db")   // or ":memory:" for tests
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definition and contract notes
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/waqtek/hr-ledger/ledger"
)

// Store implements ledger.Store plus account and profile persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite allows a single writer anyway, and ":memory:"
	// databases are per-connection, so a pool would hand tests empty copies.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		last_login TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		department TEXT NOT NULL,
		position TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		initial_leave_balance REAL NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_email ON employees(email);
	CREATE INDEX IF NOT EXISTS idx_employees_active ON employees(is_active);

	CREATE TABLE IF NOT EXISTS leave_balances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		opening_balance REAL NOT NULL DEFAULT 0,
		leave_taken REAL NOT NULL DEFAULT 0,
		hr_adjustments REAL NOT NULL DEFAULT 0,
		closing_balance REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: exactly one balance row per employee-month. Concurrent
	-- first-adjustments race on creation; the loser's insert must fail
	-- here rather than produce a second row.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_balances_employee_month
		ON leave_balances(employee_id, year, month);

	CREATE TABLE IF NOT EXISTS leave_adjustments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		adjustment_amount REAL NOT NULL,
		reason TEXT NOT NULL,
		adjusted_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_adjustments_employee
		ON leave_adjustments(employee_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS sick_days (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		used_days INTEGER NOT NULL DEFAULT 0,
		total_allowed INTEGER NOT NULL DEFAULT 3,
		last_reset TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_sick_days_employee_year
		ON sick_days(employee_id, year);

	CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT NOT NULL,
		details_json TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_logs_target
		ON audit_logs(target_type, target_id);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp
		ON audit_logs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USER STORE
// =============================================================================

// CreateUser inserts a new authentication principal.
// Returns ledger.ErrDuplicateEmail when the email is taken.
func (s *Store) CreateUser(ctx context.Context, u ledger.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertUser(ctx, s.db, u)
}

func (s *Store) insertUser(ctx context.Context, db execer, u ledger.User) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, is_active, created_at, last_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.IsActive,
		u.CreatedAt.UTC().Format(time.RFC3339), timeOrNil(u.LastLogin),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID, nil when absent.
func (s *Store) GetUser(ctx context.Context, id string) (*ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryUser(ctx, userSelect+" WHERE id = ?", id)
}

// GetUserByEmail retrieves a user by email, nil when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryUser(ctx, userSelect+" WHERE email = ?", email)
}

const userSelect = `
	SELECT id, email, password_hash, role, is_active, created_at, last_login
	FROM users`

func (s *Store) queryUser(ctx context.Context, query string, arg any) (*ledger.User, error) {
	var (
		u         ledger.User
		createdAt string
		lastLogin sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &createdAt, &lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if lastLogin.Valid {
		t, _ := time.Parse(time.RFC3339, lastLogin.String)
		u.LastLogin = &t
	}
	return &u, nil
}

// TouchLastLogin stamps the user's last successful login.
func (s *Store) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login = ? WHERE id = ?",
		at.UTC().Format(time.RFC3339), userID,
	)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// GetEmployee returns the active employee or nil when absent or deactivated.
func (s *Store) GetEmployee(ctx context.Context, id string) (*ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, employeeSelect+" WHERE id = ? AND is_active = 1", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emps, err := scanEmployees(rows)
	if err != nil {
		return nil, err
	}
	if len(emps) == 0 {
		return nil, nil
	}
	return &emps[0], nil
}

// ListEmployees returns all active employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, employeeSelect+" WHERE is_active = 1 ORDER BY full_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEmployees(rows)
}

const employeeSelect = `
	SELECT id, user_id, full_name, email, department, position, hire_date,
	       phone_number, initial_leave_balance, is_active, created_at, created_by
	FROM employees`

func scanEmployees(rows *sql.Rows) ([]ledger.Employee, error) {
	var employees []ledger.Employee
	for rows.Next() {
		var (
			e              ledger.Employee
			hireDate       string
			initialBalance float64
			createdAt      string
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.FullName, &e.Email, &e.Department, &e.Position,
			&hireDate, &e.PhoneNumber, &initialBalance, &e.IsActive, &createdAt, &e.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		e.HireDate, _ = time.Parse(time.RFC3339, hireDate)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		e.InitialLeaveBalance = decimal.NewFromFloat(initialBalance)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// CreateEmployeeProfile creates the user account, the employee record, the
// hire month's seeded balance row, and the current year's sick-day row in
// one transaction. Either the whole profile exists afterwards or none of it.
func (s *Store) CreateEmployeeProfile(ctx context.Context, u ledger.User, e ledger.Employee, b ledger.LeaveBalance, sd ledger.SickDays) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertUser(ctx, tx, u); err != nil {
		return err
	}

	initial, _ := e.InitialLeaveBalance.Float64()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO employees (id, user_id, full_name, email, department, position,
		 hire_date, phone_number, initial_leave_balance, is_active, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.FullName, e.Email, e.Department, e.Position,
		e.HireDate.UTC().Format(time.RFC3339), e.PhoneNumber, initial, e.IsActive,
		e.CreatedAt.UTC().Format(time.RFC3339), e.CreatedBy,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert employee: %w", err)
	}

	if err := s.insertBalance(ctx, tx, b); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sick_days (id, employee_id, year, used_days, total_allowed, last_reset)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sd.ID, sd.EmployeeID, sd.Year, sd.UsedDays, sd.TotalAllowed,
		sd.LastReset.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sick days: %w", err)
	}

	return tx.Commit()
}

// =============================================================================
// LEAVE BALANCES
// =============================================================================

// FindBalance returns the row for (employeeID, year, month), nil when absent.
func (s *Store) FindBalance(ctx context.Context, employeeID string, year, month int) (*ledger.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryBalance(ctx,
		balanceSelect+" WHERE employee_id = ? AND year = ? AND month = ?",
		employeeID, year, month)
}

const balanceSelect = `
	SELECT id, employee_id, year, month, opening_balance, leave_taken,
	       hr_adjustments, closing_balance, created_at
	FROM leave_balances`

func (s *Store) queryBalance(ctx context.Context, query string, args ...any) (*ledger.LeaveBalance, error) {
	var (
		b                                    ledger.LeaveBalance
		opening, taken, adjustments, closing float64
		createdAt                            string
	)

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.EmployeeID, &b.Year, &b.Month,
		&opening, &taken, &adjustments, &closing, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query balance: %w", err)
	}

	b.OpeningBalance = decimal.NewFromFloat(opening)
	b.LeaveTaken = decimal.NewFromFloat(taken)
	b.HRAdjustments = decimal.NewFromFloat(adjustments)
	b.ClosingBalance = decimal.NewFromFloat(closing)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &b, nil
}

// InsertBalance creates a new balance row. Returns ledger.ErrBalanceExists
// when a row for the same (employee, year, month) key already exists.
func (s *Store) InsertBalance(ctx context.Context, b ledger.LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertBalance(ctx, s.db, b)
}

func (s *Store) insertBalance(ctx context.Context, db execer, b ledger.LeaveBalance) error {
	opening, _ := b.OpeningBalance.Float64()
	taken, _ := b.LeaveTaken.Float64()
	adjustments, _ := b.HRAdjustments.Float64()
	closing, _ := b.ClosingBalance.Float64()

	_, err := db.ExecContext(ctx,
		`INSERT INTO leave_balances (id, employee_id, year, month, opening_balance,
		 leave_taken, hr_adjustments, closing_balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.EmployeeID, b.Year, b.Month,
		opening, taken, adjustments, closing,
		b.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrBalanceExists
		}
		return fmt.Errorf("failed to insert balance: %w", err)
	}
	return nil
}

// IncrementBalance applies delta to closing_balance and hr_adjustments in a
// single UPDATE keyed by row ID, then returns the updated row. The arithmetic
// happens in the database, so concurrent calls never lose updates.
func (s *Store) IncrementBalance(ctx context.Context, balanceID string, delta decimal.Decimal) (*ledger.LeaveBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, _ := delta.Float64()
	res, err := s.db.ExecContext(ctx,
		`UPDATE leave_balances
		 SET closing_balance = closing_balance + ?,
		     hr_adjustments = hr_adjustments + ?
		 WHERE id = ?`,
		d, d, balanceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("balance row %s not found during update", balanceID)
	}

	return s.queryBalance(ctx, balanceSelect+" WHERE id = ?", balanceID)
}

// =============================================================================
// ADJUSTMENT LOG (append-only)
// =============================================================================

// AppendAdjustment records one immutable adjustment event.
func (s *Store) AppendAdjustment(ctx context.Context, adj ledger.LeaveAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, _ := adj.Amount.Float64()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leave_adjustments (id, employee_id, adjustment_amount, reason, adjusted_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		adj.ID, adj.EmployeeID, amount, adj.Reason, adj.AdjustedBy,
		adj.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append adjustment: %w", err)
	}
	return nil
}

// ListAdjustments returns an employee's adjustments, newest first.
func (s *Store) ListAdjustments(ctx context.Context, employeeID string) ([]ledger.LeaveAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, adjustment_amount, reason, adjusted_by, created_at
		 FROM leave_adjustments
		 WHERE employee_id = ?
		 ORDER BY created_at DESC, id`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []ledger.LeaveAdjustment
	for rows.Next() {
		var (
			adj       ledger.LeaveAdjustment
			amount    float64
			createdAt string
		)
		if err := rows.Scan(&adj.ID, &adj.EmployeeID, &amount, &adj.Reason, &adj.AdjustedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adj.Amount = decimal.NewFromFloat(amount)
		adj.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}

// =============================================================================
// SICK DAYS
// =============================================================================

// GetSickDays returns the (employee, year) counter, nil when no row exists
// yet for that year.
func (s *Store) GetSickDays(ctx context.Context, employeeID string, year int) (*ledger.SickDays, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sd        ledger.SickDays
		lastReset string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, employee_id, year, used_days, total_allowed, last_reset
		 FROM sick_days WHERE employee_id = ? AND year = ?`,
		employeeID, year,
	).Scan(&sd.ID, &sd.EmployeeID, &sd.Year, &sd.UsedDays, &sd.TotalAllowed, &lastReset)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sick days: %w", err)
	}

	sd.LastReset, _ = time.Parse(time.RFC3339, lastReset)
	return &sd, nil
}

// =============================================================================
// AUDIT LOG (append-only)
// =============================================================================

// AppendAudit records one immutable audit event.
func (s *Store) AppendAudit(ctx context.Context, entry ledger.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	detailsJSON, _ := json.Marshal(entry.Details)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, target_type, target_id, details_json, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Action, entry.TargetType, entry.TargetID,
		string(detailsJSON), entry.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListAuditByTarget returns audit events for one target, newest first.
func (s *Store) ListAuditByTarget(ctx context.Context, targetType, targetID string) ([]ledger.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, action, target_type, target_id, details_json, timestamp
		 FROM audit_logs
		 WHERE target_type = ? AND target_id = ?
		 ORDER BY timestamp DESC, id`,
		targetType, targetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

// ListAudit returns the most recent audit events across all targets.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]ledger.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, action, target_type, target_id, details_json, timestamp
		 FROM audit_logs
		 ORDER BY timestamp DESC, id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

func scanAuditEntries(rows *sql.Rows) ([]ledger.AuditLog, error) {
	var entries []ledger.AuditLog
	for rows.Next() {
		var (
			e           ledger.AuditLog
			detailsJSON sql.NullString
			timestamp   string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.TargetType, &e.TargetID, &detailsJSON, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if detailsJSON.Valid && detailsJSON.String != "" {
			json.Unmarshal([]byte(detailsJSON.String), &e.Details)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func timeOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
