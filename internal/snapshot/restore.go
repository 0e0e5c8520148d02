package snapshot

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Restore replays a script produced by Backup. The whole script is read and
// checked before anything runs, and it runs in one transaction: on any
// error the store is left as it was and the error wraps core.ErrRestore.
func (m *Manager) Restore(ctx context.Context, r io.Reader) error {
	start := time.Now()

	stmts, err := parseScript(r)
	if err != nil {
		return m.restoreFailed(ctx, err)
	}

	err = m.store.Update(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
			return err
		}
		if m.mode == ModeReplace {
			for i := len(tables) - 1; i >= 0; i-- {
				if _, err := tx.ExecContext(ctx, "DELETE FROM "+tables[i].name); err != nil {
					return fmt.Errorf("clear %s: %w", tables[i].name, err)
				}
			}
		}
		for i, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		if err := checkRows(ctx, tx); err != nil {
			return err
		}
		return checkForeignKeys(ctx, tx)
	})
	if err != nil {
		return m.restoreFailed(ctx, err)
	}

	m.logger.InfoContext(ctx, "Restore complete",
		log.FieldOperation, log.OpRestore,
		log.FieldMode, string(m.mode),
		log.FieldStatements, len(stmts),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// RestoreFile restores from the backup at path.
func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return m.restoreFailed(ctx, err)
	}
	defer f.Close()

	m.logger.InfoContext(ctx, "Restoring backup", log.FieldOperation, log.OpRestore, log.FieldPath, path)
	return m.Restore(ctx, f)
}

func (m *Manager) restoreFailed(ctx context.Context, err error) error {
	m.logger.LogError(ctx, "Restore failed", err, log.OpRestore,
		log.NewFields().WithErrorType(log.ErrorTypeRestore))
	return fmt.Errorf("%w: %w", core.ErrRestore, err)
}

// checkForeignKeys fails while references are still dangling. Deferred
// violations would otherwise only surface at COMMIT.
func checkForeignKeys(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		var (
			tbl    string
			rowid  sql.NullInt64
			parent string
			fkid   int64
		)
		if err := rows.Scan(&tbl, &rowid, &parent, &fkid); err != nil {
			return err
		}
		return fmt.Errorf("row %d of %s references a missing %s row", rowid.Int64, tbl, parent)
	}
	return rows.Err()
}

// checkRows fails on the first row that the store could not read back.
func checkRows(ctx context.Context, tx *sql.Tx) error {
	for _, t := range tables {
		var id any
		err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT id FROM %s WHERE NOT (%s) LIMIT 1", t.name, t.valid)).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("check %s: %w", t.name, err)
		}
		return fmt.Errorf("row %v of %s holds a malformed value", id, t.name)
	}
	return nil
}

var (
	errTruncated = errors.New("script is incomplete")
	errStatement = errors.New("unexpected statement")
)

// parseScript splits a backup script into its statements, without the
// surrounding BEGIN/COMMIT. It rejects anything that was cut short or that
// tries to manage transactions itself.
func parseScript(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
	}

	if len(lines) < 2 || lines[0] != beginLine {
		return nil, fmt.Errorf("%w: missing %q header", errTruncated, beginLine)
	}
	if lines[len(lines)-1] != commitLine {
		return nil, fmt.Errorf("%w: missing %q trailer", errTruncated, commitLine)
	}

	body := lines[1 : len(lines)-1]
	for i, stmt := range body {
		if !strings.HasSuffix(stmt, ";") {
			return nil, fmt.Errorf("%w: line %d is not a complete statement", errTruncated, i+2)
		}
		if !isDumpStatement(stmt) {
			return nil, fmt.Errorf("%w on line %d: %q", errStatement, i+2, stmt)
		}
	}
	return body, nil
}

// isDumpStatement reports whether stmt is one statement of a form Backup
// writes: the create statement of a known table, or a single row insert into
// one. Anything else, including a second statement hidden after a ';', could
// end the restore transaction early.
func isDumpStatement(stmt string) bool {
	for _, t := range tables {
		if stmt == t.create {
			return true
		}
	}

	const prefix = "INSERT OR REPLACE INTO \""
	rest, ok := strings.CutPrefix(stmt, prefix)
	if !ok {
		return false
	}
	name, rest, ok := strings.Cut(rest, "\" VALUES(")
	if !ok {
		return false
	}
	if _, known := lookupTable(name); !known {
		return false
	}
	if !strings.HasSuffix(rest, ");") {
		return false
	}
	return singleStatement(rest)
}

// singleStatement reports whether the only ';' outside string literals is
// the last byte. Comments are refused outright.
func singleStatement(s string) bool {
	inText := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inText {
			if c == '\'' {
				inText = false
			}
			continue
		}
		switch {
		case c == '\'':
			inText = true
		case c == ';' && i != len(s)-1:
			return false
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			return false
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			return false
		}
	}
	return !inText
}
