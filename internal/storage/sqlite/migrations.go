package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: organizations must be created before fee_types and
// officers, and accounts before students/officers, due to foreign keys.
const schema = `
CREATE TABLE IF NOT EXISTS organizations (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL UNIQUE,
    department TEXT NOT NULL DEFAULT '',
    fee_tier TEXT NOT NULL,
    program_affiliation TEXT NOT NULL DEFAULT 'ALL',
    hierarchy_level TEXT NOT NULL,
    parent_id TEXT,
    contact_email TEXT NOT NULL DEFAULT '',
    booth_location TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    FOREIGN KEY (parent_id) REFERENCES organizations(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS fee_types (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    academic_year TEXT NOT NULL,
    semester TEXT NOT NULL,
    applicable_year_levels TEXT NOT NULL DEFAULT 'All',
    deadline INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    UNIQUE (organization_id, name, academic_year, semester),
    FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    is_officer INTEGER NOT NULL DEFAULT 0,
    is_admin INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS students (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL UNIQUE,
    student_number TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    program TEXT NOT NULL DEFAULT '',
    year_level INTEGER NOT NULL,
    academic_year TEXT NOT NULL,
    semester TEXT NOT NULL,
    email TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS officers (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL UNIQUE,
    employee_id TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    organization_id TEXT NOT NULL,
    role TEXT NOT NULL,
    can_process_payments INTEGER NOT NULL DEFAULT 1,
    can_void_payments INTEGER NOT NULL DEFAULT 0,
    can_generate_reports INTEGER NOT NULL DEFAULT 0,
    can_promote_officers INTEGER NOT NULL DEFAULT 0,
    is_super_officer INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE,
    FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payment_requests (
    request_id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL,
    organization_id TEXT NOT NULL,
    fee_type_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    payment_method TEXT NOT NULL DEFAULT 'CASH',
    status TEXT NOT NULL DEFAULT 'PENDING',
    qr_signature TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL DEFAULT 0,
    paid_at INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (student_id) REFERENCES students(id) ON DELETE CASCADE,
    FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE,
    FOREIGN KEY (fee_type_id) REFERENCES fee_types(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    request_id TEXT UNIQUE,
    student_id TEXT NOT NULL,
    organization_id TEXT NOT NULL,
    fee_type_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    amount_received TEXT NOT NULL,
    change_given TEXT NOT NULL,
    or_number TEXT NOT NULL UNIQUE,
    payment_method TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'COMPLETED',
    processed_by TEXT,
    is_void INTEGER NOT NULL DEFAULT 0,
    void_reason TEXT NOT NULL DEFAULT '',
    voided_by TEXT,
    voided_at INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (request_id) REFERENCES payment_requests(request_id) ON DELETE SET NULL,
    FOREIGN KEY (student_id) REFERENCES students(id) ON DELETE CASCADE,
    FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE,
    FOREIGN KEY (fee_type_id) REFERENCES fee_types(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    payment_id TEXT NOT NULL UNIQUE,
    or_number TEXT NOT NULL UNIQUE,
    verification_signature TEXT NOT NULL,
    email_sent INTEGER NOT NULL DEFAULT 0,
    email_sent_at INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS academic_periods (
    id TEXT PRIMARY KEY,
    academic_year TEXT NOT NULL,
    semester TEXT NOT NULL,
    start_date INTEGER NOT NULL,
    end_date INTEGER NOT NULL,
    is_current INTEGER NOT NULL DEFAULT 0,
    UNIQUE (academic_year, semester)
);

CREATE TABLE IF NOT EXISTS activity_logs (
    id TEXT PRIMARY KEY,
    account_id TEXT,
    action TEXT NOT NULL,
    description TEXT NOT NULL,
    payment_id TEXT,
    request_id TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fee_types_org ON fee_types(organization_id);
CREATE INDEX IF NOT EXISTS idx_requests_status ON payment_requests(status);
CREATE INDEX IF NOT EXISTS idx_requests_student_status ON payment_requests(student_id, status);
CREATE INDEX IF NOT EXISTS idx_payments_student ON payments(student_id);
CREATE INDEX IF NOT EXISTS idx_payments_org ON payments(organization_id);
CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);
CREATE INDEX IF NOT EXISTS idx_officers_org ON officers(organization_id);
CREATE INDEX IF NOT EXISTS idx_activity_account ON activity_logs(account_id, created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
