package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/index"
)

type Result struct {
	ID        int
	Ts        string
	Sender    string
	Snippet   string
	System    bool
	Media     bool
	FirstLine int
	Rank      float64
}

type Options struct {
	Query         string
	Senders       []string // nil = all
	Since         string   // "" = no filter, e.g. "2019-01-01"
	Until         string   // "" = no filter, inclusive
	IncludeSystem bool
	Limit         int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 || query == "" {
		// no match, return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	// find rune position of idx
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// filters returns the WHERE conditions shared by every query path.
// Stored timestamps sort lexically, so a bare date works as a lower
// bound as-is and is extended to its last second for the upper bound.
func filters(opts Options) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(opts.Senders) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(opts.Senders)), ",")
		conditions = append(conditions, "m.sender IN ("+ph+")")
		for _, s := range opts.Senders {
			args = append(args, s)
		}
	}

	if !opts.IncludeSystem {
		conditions = append(conditions, "m.system = 0")
	}

	if opts.Since != "" {
		conditions = append(conditions, "m.ts >= ?")
		args = append(args, opts.Since)
	}

	if opts.Until != "" {
		until := opts.Until
		if len(until) == len("2006-01-02") {
			until += " 23:59:59"
		}
		conditions = append(conditions, "m.ts != '' AND m.ts <= ?")
		args = append(args, until)
	}

	return conditions, args
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// FTS5 tokenizes on word boundaries, which CJK text does not have
	if containsCJK(opts.Query) {
		return searchLike(db, opts)
	}
	return searchFTS(db, opts)
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []interface{}{opts.Query}

	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.id,
			m.ts,
			m.sender,
			snippet(messages_fts, 0, '>>>','<<<', '...', 40) as snip,
			m.system,
			m.media,
			m.first_line,
			bm25(messages_fts) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.id
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"m.body LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}

	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.id,
			m.ts,
			m.sender,
			m.body,
			m.system,
			m.media,
			m.first_line
		FROM messages m
		WHERE %s
		ORDER BY m.id
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.ID, &r.Ts, &r.Sender, &fullText,
			&r.System, &r.Media, &r.FirstLine,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		r.Rank = 0
		results = append(results, r)
	}
	return results, rows.Err()
}

// List returns messages in transcript order with only the structural
// filters applied, ignoring Query. The TUI browses with it while the
// query box is empty. Limit <= 0 means everything.
func List(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filters(opts)
	where := "1=1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			m.id,
			m.ts,
			m.sender,
			m.body,
			m.system,
			m.media,
			m.first_line
		FROM messages m
		WHERE %s
		ORDER BY m.id
		LIMIT ?
	`, where)

	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	args = append(args, limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.ID, &r.Ts, &r.Sender, &fullText,
			&r.System, &r.Media, &r.FirstLine,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, "", 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ID, &r.Ts, &r.Sender, &r.Snippet,
			&r.System, &r.Media, &r.FirstLine, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
