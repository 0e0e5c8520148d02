package snapshot

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/log"
)

const (
	beginLine  = "BEGIN TRANSACTION;"
	commitLine = "COMMIT;"
)

// Backup writes a point-in-time SQL script of the ledger to w, one
// statement per line.
func (m *Manager) Backup(ctx context.Context, w io.Writer) error {
	start := time.Now()
	bw := bufio.NewWriter(w)
	statements := 0

	err := m.store.View(ctx, func(tx *sql.Tx) error {
		if _, err := fmt.Fprintln(bw, beginLine); err != nil {
			return err
		}
		for _, t := range tables {
			if _, err := fmt.Fprintln(bw, t.create); err != nil {
				return err
			}
		}
		for _, t := range tables {
			n, err := dumpTable(ctx, tx, bw, t)
			if err != nil {
				return fmt.Errorf("dump %s: %w", t.name, err)
			}
			statements += n
		}
		_, err := fmt.Fprintln(bw, commitLine)
		return err
	})
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		m.logger.LogError(ctx, "Backup failed", err, log.OpBackup, log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		return fmt.Errorf("backup: %w", err)
	}

	m.logger.InfoContext(ctx, "Backup written",
		log.FieldOperation, log.OpBackup,
		log.FieldStatements, statements,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// BackupFile writes a backup to path. The file appears complete or not at
// all and is readable by the owner only.
func (m *Manager) BackupFile(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".fintrack-backup-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := m.Backup(ctx, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename backup: %w", err)
	}

	m.logger.InfoContext(ctx, "Backup file saved", log.FieldOperation, log.OpBackup, log.FieldPath, path)
	return nil
}

// NewArtifactPath returns a fresh, collision-free backup file name in dir.
func NewArtifactPath(dir string) string {
	name := fmt.Sprintf("backup-%s-%s.sql", time.Now().UTC().Format("20060102T150405Z"), uuid.NewString())
	return filepath.Join(dir, name)
}

func dumpTable(ctx context.Context, tx *sql.Tx, w io.Writer, t table) (int, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY id", t.columns, t.name))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return n, err
		}
		literals := make([]string, len(values))
		for i, v := range values {
			lit, err := sqlLiteral(v)
			if err != nil {
				return n, fmt.Errorf("column %s: %w", cols[i], err)
			}
			literals[i] = lit
		}
		if _, err := fmt.Fprintf(w, "INSERT OR REPLACE INTO %q VALUES(%s);\n", t.name, strings.Join(literals, ",")); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

func sqlLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case string:
		return quoteText(x), nil
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(x)) + "'", nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}

// quoteText renders s as a SQL string expression that fits on one line.
// Line breaks become char(10) and char(13) concatenations.
func quoteText(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return quote(s)
	}
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			parts = append(parts, quote(s[start:i]), "char("+strconv.Itoa(int(s[i]))+")")
			start = i + 1
		}
	}
	parts = append(parts, quote(s[start:]))
	return strings.Join(parts, "||")
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
