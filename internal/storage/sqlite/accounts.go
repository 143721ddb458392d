package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unipay/unipay/internal/models"
)

const accountColumns = `id, username, email, password_hash, is_officer, is_admin, created_at, is_active`

const studentColumns = `id, account_id, student_number, first_name, last_name, program,
	year_level, academic_year, semester, email, created_at, is_active`

const officerColumns = `id, account_id, employee_id, first_name, last_name, organization_id, role,
	can_process_payments, can_void_payments, can_generate_reports, can_promote_officers,
	is_super_officer, created_at, is_active`

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, email, password_hash, is_officer, is_admin, created_at, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.Username, account.Email, account.PasswordHash,
		account.IsOfficer, account.IsAdmin, account.CreatedAt, account.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetAccountByUsername retrieves an account by login name.
func (s *SQLiteStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", username, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by username: %w", err)
	}
	return account, nil
}

// CreateStudent inserts a new student profile.
func (s *SQLiteStore) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.New().String()
	}
	if student.CreatedAt == 0 {
		student.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id, account_id, student_number, first_name, last_name, program,
		 year_level, academic_year, semester, email, created_at, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID, student.AccountID, student.StudentNumber, student.FirstName, student.LastName,
		student.Program, student.YearLevel, student.AcademicYear, student.Semester,
		student.Email, student.CreatedAt, student.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert student: %w", err)
	}
	return nil
}

// GetStudent retrieves a student by ID.
func (s *SQLiteStore) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

// ListActiveStudents retrieves every active student.
func (s *SQLiteStore) ListActiveStudents(ctx context.Context) ([]*models.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE is_active = 1 ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate students: %w", err)
	}
	return students, nil
}

// GetOfficer retrieves an officer by ID.
func (s *SQLiteStore) GetOfficer(ctx context.Context, id string) (*models.Officer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+officerColumns+` FROM officers WHERE id = ?`, id)
	officer, err := scanOfficer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("officer %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get officer: %w", err)
	}
	return officer, nil
}

// ResolveRole re-reads the account plus its student and officer
// profiles. This is always a fresh read so that a promotion or
// demotion, including the actor's own, is observed by the very next
// authorization check.
func (s *SQLiteStore) ResolveRole(ctx context.Context, accountID string) (*models.AccountRole, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	role := &models.AccountRole{Account: account}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE account_id = ?`, accountID)
	student, err := scanStudent(row)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to resolve student profile: %w", err)
	}
	if err == nil {
		role.Student = student
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT `+officerColumns+` FROM officers WHERE account_id = ?`, accountID)
	officer, err := scanOfficer(row)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to resolve officer profile: %w", err)
	}
	if err == nil {
		role.Officer = officer
	}

	return role, nil
}

// PromoteStudent inserts the officer profile and flips the account's
// officer flag in one transaction. The two must never diverge.
func (s *SQLiteStore) PromoteStudent(ctx context.Context, officer *models.Officer) error {
	if officer.ID == "" {
		officer.ID = uuid.New().String()
	}
	if officer.CreatedAt == 0 {
		officer.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO officers (id, account_id, employee_id, first_name, last_name, organization_id, role,
		 can_process_payments, can_void_payments, can_generate_reports, can_promote_officers,
		 is_super_officer, created_at, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		officer.ID, officer.AccountID, officer.EmployeeID, officer.FirstName, officer.LastName,
		officer.OrganizationID, officer.Role, officer.CanProcessPayments, officer.CanVoidPayments,
		officer.CanGenerateReports, officer.CanPromoteOfficers, officer.IsSuperOfficer,
		officer.CreatedAt, officer.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert officer: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET is_officer = 1 WHERE id = ?`, officer.AccountID)
	if err != nil {
		return fmt.Errorf("failed to set officer flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DemoteOfficer deletes the officer profile entirely (so the account is
// re-promotable later) and clears the account flag, in one transaction.
func (s *SQLiteStore) DemoteOfficer(ctx context.Context, officerID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var accountID string
	err = tx.QueryRowContext(ctx,
		`SELECT account_id FROM officers WHERE id = ?`, officerID).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("officer %s: %w", officerID, models.ErrNotAnOfficer)
	}
	if err != nil {
		return fmt.Errorf("failed to look up officer: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM officers WHERE id = ?`, officerID); err != nil {
		return fmt.Errorf("failed to delete officer: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET is_officer = 0 WHERE id = ?`, accountID); err != nil {
		return fmt.Errorf("failed to clear officer flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.IsOfficer, &account.IsAdmin, &account.CreatedAt, &account.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func scanStudent(row rowScanner) (*models.Student, error) {
	student := &models.Student{}
	err := row.Scan(
		&student.ID, &student.AccountID, &student.StudentNumber, &student.FirstName,
		&student.LastName, &student.Program, &student.YearLevel, &student.AcademicYear,
		&student.Semester, &student.Email, &student.CreatedAt, &student.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}

func scanOfficer(row rowScanner) (*models.Officer, error) {
	officer := &models.Officer{}
	err := row.Scan(
		&officer.ID, &officer.AccountID, &officer.EmployeeID, &officer.FirstName, &officer.LastName,
		&officer.OrganizationID, &officer.Role, &officer.CanProcessPayments, &officer.CanVoidPayments,
		&officer.CanGenerateReports, &officer.CanPromoteOfficers, &officer.IsSuperOfficer,
		&officer.CreatedAt, &officer.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return officer, nil
}
