package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docqa/internal/config"
	"docqa/internal/index"
	"docqa/internal/models"
)

// ChunkRecord is the pgvector-backed chunk row.
type ChunkRecord struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Text          string    `bun:"text,notnull"`
	PageNumber    int       `bun:"page_number,notnull"`
	ChunkID       int       `bun:"chunk_id,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
	Score         float32   `bun:"score,scanonly"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.DSN + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*ChunkRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

func DropChunks(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*ChunkRecord)(nil)).IfExists().Exec(ctx)
	return err
}

// StoreChunks batch-inserts the chunk sequence with aligned embeddings.
func StoreChunks(ctx context.Context, db *bun.DB, chunks []models.Chunk, vectors [][]float32) error {
	records := make([]ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = ChunkRecord{
			Text:       chunk.Text,
			PageNumber: chunk.PageNumber,
			ChunkID:    chunk.ChunkID,
			Embedding:  vectors[i],
		}
	}
	_, err := db.NewInsert().Model(&records).Exec(ctx)
	return err
}

// PGStore answers similarity searches from the chunks table, ordered by
// pgvector cosine distance.
type PGStore struct {
	db *bun.DB
}

func NewPGStore(db *bun.DB) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Search(ctx context.Context, vector []float32, topK int) ([]index.Result, error) {
	var records []ChunkRecord
	err := s.db.NewSelect().
		Model(&records).
		ColumnExpr("c.*").
		ColumnExpr("1 - (c.embedding <=> ?) AS score", vector).
		OrderExpr("c.embedding <=> ?", vector).
		Limit(topK).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]index.Result, 0, len(records))
	for _, rec := range records {
		results = append(results, index.Result{
			Chunk: models.Chunk{
				Text:       rec.Text,
				PageNumber: rec.PageNumber,
				ChunkID:    rec.ChunkID,
			},
			Score: rec.Score,
		})
	}
	return results, nil
}
