// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/idea-engine/pkg/types"
)

const (
	indexDir  = "index"
	exportDir = "export"
	dbFile    = "ideas.db"
)

// Store manages the catalog SQLite database. Persistence across runs is a
// collaborator concern of the CLI, not of the core pipeline: the pipeline
// hands a Store validated and rejected ideas after a run completes.
type Store struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// NewStore opens or creates the catalog database at
// catalogDir/index/ideas.db, creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CatalogDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, catalogDir: cfg.CatalogDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			goal TEXT NOT NULL,
			metric TEXT,
			rigor TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ideas (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			run_id TEXT NOT NULL REFERENCES runs(id),
			funding_target TEXT NOT NULL,
			mechanism TEXT NOT NULL,
			metric TEXT NOT NULL,
			impact_quantity TEXT,
			cost TEXT,
			benchmark TEXT,
			cost_effectiveness TEXT,
			botec TEXT,
			verification_plan TEXT,
			doers TEXT,
			novelty_rationale TEXT,
			citations TEXT,
			status TEXT NOT NULL,
			rejection_reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ideas_run_id ON ideas(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ideas_status ON ideas(status)`,
		`CREATE INDEX IF NOT EXISTS idx_ideas_metric ON ideas(metric)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='ideas_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE ideas_fts USING fts5(funding_target, mechanism, novelty_rationale, content=ideas, content_rowid=rowid)`,
			`CREATE TRIGGER ideas_ai AFTER INSERT ON ideas BEGIN
				INSERT INTO ideas_fts(rowid, funding_target, mechanism, novelty_rationale)
				VALUES (new.rowid, new.funding_target, new.mechanism, new.novelty_rationale);
			END`,
			`CREATE TRIGGER ideas_ad AFTER DELETE ON ideas BEGIN
				INSERT INTO ideas_fts(ideas_fts, rowid, funding_target, mechanism, novelty_rationale)
				VALUES('delete', old.rowid, old.funding_target, old.mechanism, old.novelty_rationale);
			END`,
			`CREATE TRIGGER ideas_au AFTER UPDATE ON ideas BEGIN
				INSERT INTO ideas_fts(ideas_fts, rowid, funding_target, mechanism, novelty_rationale)
				VALUES('delete', old.rowid, old.funding_target, old.mechanism, old.novelty_rationale);
				INSERT INTO ideas_fts(rowid, funding_target, mechanism, novelty_rationale)
				VALUES (new.rowid, new.funding_target, new.mechanism, new.novelty_rationale);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// RunRecord describes one persisted pipeline run.
type RunRecord struct {
	ID        string
	Goal      string
	Metric    types.Metric
	Rigor     types.RigorMode
	CreatedAt time.Time
}

// SaveRun persists a run and all its terminal ideas (validated and
// rejected) in one transaction. Rejected ideas are kept with their reason
// codes for observability; retrieval filters them out by default.
func (s *Store) SaveRun(ctx context.Context, run RunRecord, ideas []types.Idea) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, goal, metric, rigor, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Goal, string(run.Metric), string(run.Rigor),
		run.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO ideas (id, run_id, funding_target, mechanism, metric,
			impact_quantity, cost, benchmark, cost_effectiveness, botec,
			verification_plan, doers, novelty_rationale, citations, status, rejection_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, idea := range ideas {
		if idea.Status == types.StatusDraft {
			return fmt.Errorf("idea %s is still draft; only terminal ideas are persisted", idea.ID)
		}
		benchJSON, _ := json.Marshal(idea.Benchmark)
		botecJSON, _ := json.Marshal(idea.Botec)
		doersJSON, _ := json.Marshal(idea.Doers)
		citationsJSON, _ := json.Marshal(idea.Citations)
		_, err := stmt.ExecContext(ctx,
			idea.ID, idea.RunID, idea.FundingTarget, idea.Mechanism,
			string(idea.Impact.Metric), idea.Impact.Quantity, idea.Cost,
			string(benchJSON), idea.CostEffectiveness, string(botecJSON),
			idea.VerificationPlan, string(doersJSON), idea.NoveltyRationale,
			string(citationsJSON), string(idea.Status), string(idea.Rejection),
		)
		if err != nil {
			return fmt.Errorf("inserting idea %s: %w", idea.ID, err)
		}
	}

	return tx.Commit()
}

// QueryOptions holds catalog query parameters.
type QueryOptions struct {
	// Query is an FTS5 full-text search over funding target, mechanism,
	// and novelty rationale.
	Query string

	// Metric filters by impact metric.
	Metric types.Metric

	// Status filters by idea status. Empty defaults to validated only.
	Status types.IdeaStatus

	// RunID filters by run.
	RunID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Retrieve queries the catalog. Full-text queries rank by FTS relevance;
// structured-only queries order by run and funding target.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.Idea, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}
	status := opts.Status
	if status == "" {
		status = types.StatusValidated
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT i.id, i.run_id, i.funding_target, i.mechanism, i.metric,
				i.impact_quantity, i.cost, i.benchmark, i.cost_effectiveness,
				i.botec, i.verification_plan, i.doers, i.novelty_rationale,
				i.citations, i.status, i.rejection_reason
			FROM ideas_fts
			JOIN ideas i ON i.rowid = ideas_fts.rowid
			WHERE ideas_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT i.id, i.run_id, i.funding_target, i.mechanism, i.metric,
				i.impact_quantity, i.cost, i.benchmark, i.cost_effectiveness,
				i.botec, i.verification_plan, i.doers, i.novelty_rationale,
				i.citations, i.status, i.rejection_reason
			FROM ideas i
			WHERE 1=1`)
	}

	qb.WriteString(` AND i.status = ?`)
	args = append(args, string(status))

	if opts.Metric != "" {
		qb.WriteString(` AND i.metric = ?`)
		args = append(args, string(opts.Metric))
	}
	if opts.RunID != "" {
		qb.WriteString(` AND i.run_id = ?`)
		args = append(args, opts.RunID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY ideas_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY i.run_id, i.funding_target`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var ideas []types.Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

func scanIdea(rows *sql.Rows) (types.Idea, error) {
	var (
		idea                                     types.Idea
		metric, status, rejection                string
		benchJSON, botecJSON, doersJSON, citJSON sql.NullString
	)
	err := rows.Scan(
		&idea.ID, &idea.RunID, &idea.FundingTarget, &idea.Mechanism, &metric,
		&idea.Impact.Quantity, &idea.Cost, &benchJSON, &idea.CostEffectiveness,
		&botecJSON, &idea.VerificationPlan, &doersJSON, &idea.NoveltyRationale,
		&citJSON, &status, &rejection,
	)
	if err != nil {
		return types.Idea{}, fmt.Errorf("scanning row: %w", err)
	}

	idea.Impact.Metric = types.Metric(metric)
	idea.Status = types.IdeaStatus(status)
	idea.Rejection = types.RejectionReason(rejection)
	if benchJSON.Valid {
		json.Unmarshal([]byte(benchJSON.String), &idea.Benchmark)
	}
	if botecJSON.Valid {
		json.Unmarshal([]byte(botecJSON.String), &idea.Botec)
	}
	if doersJSON.Valid {
		json.Unmarshal([]byte(doersJSON.String), &idea.Doers)
	}
	if citJSON.Valid {
		json.Unmarshal([]byte(citJSON.String), &idea.Citations)
	}
	return idea, nil
}
