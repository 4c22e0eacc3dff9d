// Package store keeps generation runs and their VCs in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/funvibe/vcgen/internal/vcgen"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	module      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	procedures  INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	vcs         INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS procedures (
	run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	location  TEXT NOT NULL,
	error     TEXT,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS vcs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	procedure   TEXT NOT NULL,
	block       TEXT NOT NULL,
	position    INTEGER NOT NULL,
	location    TEXT NOT NULL,
	detail      TEXT NOT NULL,
	consequent  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS antecedents (
	vc_id     INTEGER NOT NULL REFERENCES vcs(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	text      TEXT NOT NULL,
	PRIMARY KEY (vc_id, position)
);
`

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Run is the summary row of one GenerateModule call.
type Run struct {
	ID         uuid.UUID
	Module     string
	Created    time.Time
	Procedures int
	Failed     int
	VCs        int
}

// ProcedureRecord is one procedure of a run. Error is empty on success.
type ProcedureRecord struct {
	Name     string
	Location string
	Error    string
}

// VCRecord is a stored VC in its printed form.
type VCRecord struct {
	Procedure   string
	Block       string
	Position    int
	Location    string
	Detail      string
	Antecedents []string
	Consequent  string
}

// Store is a handle on the database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log *logrus.Entry
	now func() time.Time
}

// Open opens (creating if needed) the database at path. ":memory:" keeps
// everything in memory.
func Open(ctx context.Context, path string, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	// One connection: sqlite serializes writers anyway and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA foreign_keys = ON", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing store %s: %w", path, err)
		}
	}
	return &Store{db: db, log: log.WithField("store", path), now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a module result and returns the new run's id.
func (s *Store) SaveRun(ctx context.Context, result *vcgen.ModuleResult) (uuid.UUID, error) {
	id := uuid.New()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("saving run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, module, created_at, procedures, failed, vcs) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), result.Module, s.now().UTC().Format(time.RFC3339Nano),
		len(result.Procedures), result.Failed(), result.VCCount()); err != nil {
		return uuid.Nil, fmt.Errorf("saving run: %w", err)
	}

	for i, p := range result.Procedures {
		var errText sql.NullString
		if p.Err != nil {
			errText = sql.NullString{String: p.Err.Error(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO procedures (run_id, position, name, location, error) VALUES (?, ?, ?, ?, ?)`,
			id.String(), i, p.Procedure, p.Location.String(), errText); err != nil {
			return uuid.Nil, fmt.Errorf("saving procedure %s: %w", p.Procedure, err)
		}
		for _, b := range p.Blocks {
			for j, vc := range b.VCs() {
				if err := saveVC(ctx, tx, id, p.Procedure, b.Name, j, vc); err != nil {
					return uuid.Nil, err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("saving run: %w", err)
	}
	s.log.WithFields(logrus.Fields{"run": id, "module": result.Module, "vcs": result.VCCount()}).Info("run saved")
	return id, nil
}

func saveVC(ctx context.Context, tx *sql.Tx, run uuid.UUID, proc, block string, pos int, vc *vcgen.VerificationCondition) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO vcs (run_id, procedure, block, position, location, detail, consequent) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.String(), proc, block, pos, vc.Location.String(), vc.Detail, vc.Consequent.String())
	if err != nil {
		return fmt.Errorf("saving VC of %s: %w", block, err)
	}
	vcID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("saving VC of %s: %w", block, err)
	}
	for k, a := range vc.Antecedents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO antecedents (vc_id, position, text) VALUES (?, ?, ?)`,
			vcID, k, a.String()); err != nil {
			return fmt.Errorf("saving VC of %s: %w", block, err)
		}
	}
	return nil
}

// Runs lists every run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module, created_at, procedures, failed, vcs FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns one run.
func (s *Store) Run(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, module, created_at, procedures, failed, vcs FROM runs WHERE id = ?`, id.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r           Run
		id, created string
	)
	if err := row.Scan(&id, &r.Module, &created, &r.Procedures, &r.Failed, &r.VCs); err != nil {
		return Run{}, err
	}
	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", id, err)
	}
	if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("run %s time %q: %w", id, created, err)
	}
	return r, nil
}

// Procedures returns the procedures of a run in declaration order.
func (s *Store) Procedures(ctx context.Context, id uuid.UUID) ([]ProcedureRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, location, error FROM procedures WHERE run_id = ? ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("listing procedures of %s: %w", id, err)
	}
	defer rows.Close()

	var out []ProcedureRecord
	for rows.Next() {
		var (
			p      ProcedureRecord
			errMsg sql.NullString
		)
		if err := rows.Scan(&p.Name, &p.Location, &errMsg); err != nil {
			return nil, err
		}
		p.Error = errMsg.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// VCs returns the VCs of a run in the order they were generated.
func (s *Store) VCs(ctx context.Context, id uuid.UUID) ([]VCRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.procedure, v.block, v.position, v.location, v.detail, v.consequent, a.text
		FROM vcs v LEFT JOIN antecedents a ON a.vc_id = v.id
		WHERE v.run_id = ?
		ORDER BY v.id, a.position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("listing VCs of %s: %w", id, err)
	}
	defer rows.Close()

	var (
		out  []VCRecord
		last int64 = -1
	)
	// One row per antecedent; the rows of a VC are adjacent.
	for rows.Next() {
		var (
			vcID int64
			vc   VCRecord
			ant  sql.NullString
		)
		if err := rows.Scan(&vcID, &vc.Procedure, &vc.Block, &vc.Position, &vc.Location, &vc.Detail, &vc.Consequent, &ant); err != nil {
			return nil, err
		}
		if vcID != last {
			out = append(out, vc)
			last = vcID
		}
		if ant.Valid {
			cur := &out[len(out)-1]
			cur.Antecedents = append(cur.Antecedents, ant.String)
		}
	}
	return out, rows.Err()
}
