package store

// Every ledger table carries a source column: the workbook path a row was
// imported from, or empty for rows entered through the CLI.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS income (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL DEFAULT '',
    type                 TEXT NOT NULL,
    recurring            INTEGER NOT NULL DEFAULT 0,
    amount               REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS fixed_expenses (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL DEFAULT '',
    category             TEXT NOT NULL,
    monthly_amount       REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS installment_plans (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL DEFAULT '',
    card_name            TEXT NOT NULL,
    emi_amount           REAL,
    interest_percent     REAL,
    start_date           TEXT,
    end_date             TEXT,
    paid                 INTEGER
);

CREATE TABLE IF NOT EXISTS variable_expenses (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL DEFAULT '',
    category             TEXT NOT NULL,
    payment_type         TEXT,
    amount               REAL NOT NULL DEFAULT 0,
    date                 TEXT
);

CREATE TABLE IF NOT EXISTS loans (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL DEFAULT '',
    type                 TEXT NOT NULL,
    total_amount         REAL NOT NULL DEFAULT 0,
    interest_percent     REAL NOT NULL DEFAULT 0,
    duration_months      INTEGER NOT NULL DEFAULT 0,
    emi_amount           REAL NOT NULL DEFAULT 0,
    emi_date             TEXT
);

CREATE TABLE IF NOT EXISTS credit_cards (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL DEFAULT '',
    name                 TEXT NOT NULL,
    billing_date         TEXT,
    period_start         TEXT,
    period_end           TEXT,
    due_date             TEXT
);

CREATE TABLE IF NOT EXISTS savings (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL DEFAULT '',
    month                TEXT NOT NULL,
    target               REAL NOT NULL DEFAULT 0,
    actual               REAL NOT NULL DEFAULT 0,
    notes                TEXT
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_income_source ON income(source);
CREATE INDEX IF NOT EXISTS idx_fixed_source ON fixed_expenses(source);
CREATE INDEX IF NOT EXISTS idx_plans_source ON installment_plans(source);
CREATE INDEX IF NOT EXISTS idx_expenses_source ON variable_expenses(source);
CREATE INDEX IF NOT EXISTS idx_loans_source ON loans(source);
CREATE INDEX IF NOT EXISTS idx_cards_source ON credit_cards(source);
CREATE INDEX IF NOT EXISTS idx_savings_source ON savings(source);
`
