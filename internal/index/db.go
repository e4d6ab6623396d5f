package index

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/parse"
)

const schema = `
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS messages (
    id          INTEGER PRIMARY KEY,
    ts          TEXT NOT NULL DEFAULT '',
    sender      TEXT NOT NULL DEFAULT '',
    body        TEXT NOT NULL,
    system      INTEGER NOT NULL DEFAULT 0,
    media       INTEGER NOT NULL DEFAULT 0,
    media_names TEXT NOT NULL DEFAULT '',
    first_line  INTEGER NOT NULL DEFAULT 0
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    body,
    content=messages,
    content_rowid=id,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, body) VALUES (new.id, new.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.id, old.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.id, old.body);
    INSERT INTO messages_fts(rowid, body) VALUES (new.id, new.body);
END;
`

// TsFormat is how timestamps are stored; lexical order equals time
// order, and a date prefix compares cleanly against it.
const TsFormat = "2006-01-02 15:04:05"

// DB is the search index for one open chat. It lives in memory and is
// rebuilt whenever a folder is (re)opened, so nothing persists between
// runs.
type DB struct {
	db *sql.DB
}

func Open() (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// a second pool connection would see a fresh empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// Fill replaces the index content with the given messages. IDs are the
// message positions, so they are dense from zero.
func (d *DB) Fill(msgs []parse.Message) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (id, ts, sender, body, system, media, media_names, first_line)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range msgs {
		names := make([]string, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			names = append(names, a.Name)
		}
		_, err := stmt.Exec(
			i,
			FormatTs(m.Timestamp),
			m.Sender,
			m.Body,
			m.System,
			m.Media,
			strings.Join(names, "\n"),
			m.FirstLine,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FormatTs renders a timestamp for storage; the zero time becomes "".
func FormatTs(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TsFormat)
}

func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

// Row is one indexed message.
type Row struct {
	ID         int
	Ts         string
	Sender     string
	Body       string
	System     bool
	Media      bool
	MediaNames []string
	FirstLine  int
}

func splitNames(names string) []string {
	if names == "" {
		return nil
	}
	return strings.Split(names, "\n")
}

func (d *DB) Get(id int) (*Row, error) {
	var r Row
	var names string
	err := d.db.QueryRow(
		`SELECT id, ts, sender, body, system, media, media_names, first_line
		 FROM messages WHERE id = ?`, id,
	).Scan(&r.ID, &r.Ts, &r.Sender, &r.Body, &r.System, &r.Media, &names, &r.FirstLine)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.MediaNames = splitNames(names)
	return &r, nil
}

// Window returns the messages around a hit. IDs are dense positions,
// so the window is an id range. hitID < 0 or context < 0 returns
// everything. startPos is the number of messages before the window,
// totalCount the whole chat.
func (d *DB) Window(hitID, context int) (rows []Row, hitIdx int, startPos int, totalCount int, err error) {
	if err = d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&totalCount); err != nil {
		return nil, -1, 0, 0, err
	}

	start, end := 0, totalCount
	if hitID >= 0 && context >= 0 {
		start = hitID - context
		if start < 0 {
			start = 0
		}
		end = hitID + context + 1
		if end > totalCount {
			end = totalCount
		}
	}

	res, err := d.db.Query(
		`SELECT id, ts, sender, body, system, media, media_names, first_line
		 FROM messages WHERE id >= ? AND id < ? ORDER BY id`,
		start, end,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer res.Close()

	hitIdx = -1
	for res.Next() {
		var r Row
		var names string
		if err := res.Scan(&r.ID, &r.Ts, &r.Sender, &r.Body, &r.System, &r.Media, &names, &r.FirstLine); err != nil {
			return nil, -1, 0, 0, err
		}
		r.MediaNames = splitNames(names)
		if r.ID == hitID {
			hitIdx = len(rows)
		}
		rows = append(rows, r)
	}
	return rows, hitIdx, start, totalCount, res.Err()
}
