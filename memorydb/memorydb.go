// Package memorydb loads memory embeddings straight from the host database.
package memorydb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jerry-desk/bridgecli/types"
	"github.com/jerry-desk/bridgecli/utils"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	// ContentLimit is how many characters of content are kept per memory
	ContentLimit = 100

	timestampLayout = "2006-01-02 15:04:05"
)

const selectMemories = `SELECT id, content, embedding_binary, created_at
FROM memories
WHERE embedding_binary IS NOT NULL
ORDER BY created_at DESC
LIMIT ?`

type row struct {
	ID        int64          `db:"id"`
	Content   sql.NullString `db:"content"`
	Embedding []byte         `db:"embedding_binary"`
	CreatedAt any            `db:"created_at"`
}

// Open connects to the database named by dsn. postgres:// and postgresql://
// use pgx; sqlite://path, file: URIs and bare paths use SQLite.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	driver, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	utils.Log("cluster").WithField("driver", driver).Debug("memory database connected")
	return db, nil
}

func parseDSN(dsn string) (driver, source string, err error) {
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("memory database DSN is empty")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "file:"):
		return "sqlite", dsn, nil
	case strings.Contains(dsn, "://"):
		return "", "", fmt.Errorf("unsupported database scheme in %q", redact(dsn))
	default:
		return "sqlite", dsn, nil
	}
}

// Scheme returns the driver a DSN would use, for diagnostics.
func Scheme(dsn string) string {
	driver, _, err := parseDSN(dsn)
	if err != nil {
		return ""
	}
	return driver
}

func redact(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at >= 0 {
		if scheme := strings.Index(dsn, "://"); scheme >= 0 && scheme < at {
			return dsn[:scheme+3] + "***" + dsn[at:]
		}
	}
	return dsn
}

// Load returns up to limit memories with embeddings, newest first.
func Load(ctx context.Context, db *sqlx.DB, limit int) ([]types.Memory, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var rows []row
	if err := db.SelectContext(ctx, &rows, db.Rebind(selectMemories), limit); err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}

	memories := make([]types.Memory, 0, len(rows))
	for _, r := range rows {
		embedding, err := UnpackVector(r.Embedding)
		if err != nil {
			return nil, fmt.Errorf("memory %d: %w", r.ID, err)
		}

		id, _ := json.Marshal(r.ID)
		content, _ := json.Marshal(LimitContent(r.Content.String, ContentLimit))
		createdAt, _ := json.Marshal(formatTimestamp(r.CreatedAt))

		memories = append(memories, types.Memory{
			ID:        id,
			Content:   content,
			CreatedAt: createdAt,
			Embedding: embedding,
		})
	}
	return memories, nil
}

// UnpackVector decodes packed little-endian float32 values.
func UnpackVector(blob []byte) ([]float64, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}

	vec := make([]float64, len(blob)/4)
	for i := range vec {
		vec[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:])))
	}
	return vec, nil
}

// PackVector is the inverse of UnpackVector.
func PackVector(vec []float64) []byte {
	blob := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(float32(v)))
	}
	return blob
}

// LimitContent truncates s to limit characters, appending "..." when cut.
func LimitContent(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

func formatTimestamp(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(timestampLayout)
	case []byte:
		return string(t)
	default:
		return t
	}
}
