package journal

const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	long_value REAL NOT NULL,
	short_value REAL NOT NULL,
	total_value REAL NOT NULL,
	benchmark REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS closed_positions (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	size REAL NOT NULL,
	purchase_price REAL NOT NULL,
	selling_price REAL NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	fees REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_run_time ON snapshots(run_id, time);
CREATE INDEX IF NOT EXISTS idx_closed_run ON closed_positions(run_id);
`
