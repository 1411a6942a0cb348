package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money is stored as TEXT decimal strings so values round-trip exactly.
// IMPORTANT: receipt_scans must be created BEFORE split_bills due to foreign key constraint.
const schema = `
CREATE TABLE IF NOT EXISTS receipt_scans (
    id TEXT PRIMARY KEY,
    image_ref TEXT,
    content_hash TEXT NOT NULL UNIQUE,
    merchant TEXT,
    title TEXT NOT NULL,
    tax TEXT NOT NULL,
    service_fee TEXT NOT NULL,
    total_amount TEXT NOT NULL,
    raw_text TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scan_line_items (
    scan_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    description TEXT NOT NULL,
    price TEXT NOT NULL,
    is_extra_charge INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (scan_id, position),
    FOREIGN KEY (scan_id) REFERENCES receipt_scans(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS split_bills (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    merchant TEXT,
    currency TEXT NOT NULL,
    tax_percent TEXT NOT NULL,
    service_fee_percent TEXT NOT NULL,
    paid_by TEXT,
    receipt_scan_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (receipt_scan_id) REFERENCES receipt_scans(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS split_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    split_bill_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    description TEXT NOT NULL,
    price TEXT NOT NULL,
    FOREIGN KEY (split_bill_id) REFERENCES split_bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_assignments (
    item_id INTEGER NOT NULL,
    participant TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    PRIMARY KEY (item_id, participant),
    FOREIGN KEY (item_id) REFERENCES split_items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS split_participants (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    split_bill_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    share_amount TEXT NOT NULL,
    note TEXT,
    UNIQUE (split_bill_id, name),
    FOREIGN KEY (split_bill_id) REFERENCES split_bills(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_split_items_bill_id ON split_items(split_bill_id);
CREATE INDEX IF NOT EXISTS idx_item_assignments_item_id ON item_assignments(item_id);
CREATE INDEX IF NOT EXISTS idx_split_participants_bill_id ON split_participants(split_bill_id);
CREATE INDEX IF NOT EXISTS idx_split_bills_receipt_scan_id ON split_bills(receipt_scan_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
