package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/repository"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/models"
)

// Repository persists identities, sessions and observation records in
// sqlite. Observation id assignment is a read-modify-write region guarded
// by mu so concurrent creates never share an id.
type Repository struct {
	db *sql.DB
	mu sync.Mutex
}

func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS identities (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			credential_hash TEXT NOT NULL,
			is_default INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			identity_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			FOREIGN KEY(identity_id) REFERENCES identities(id)
		);
		CREATE TABLE IF NOT EXISTS observations (
			id INTEGER PRIMARY KEY,
			obs_date TEXT NOT NULL,
			obs_time TEXT NOT NULL,
			person BLOB NOT NULL,
			vehicle BLOB NOT NULL,
			location BLOB,
			images BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Identities

func (r *Repository) CreateIdentity(ctx context.Context, username, credentialHash string, isDefault bool) (models.Identity, error) {
	ident := models.Identity{
		ID:               uuid.NewString(),
		Username:         username,
		CredentialHash:   credentialHash,
		IsDefaultAccount: isDefault,
		CreatedAt:        time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities(id, username, credential_hash, is_default, created_at) VALUES(?,?,?,?,?)`,
		ident.ID, ident.Username, ident.CredentialHash, boolToInt(ident.IsDefaultAccount), ident.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.Identity{}, repository.ErrDuplicateUsername
		}
		return models.Identity{}, err
	}
	return ident, nil
}

func (r *Repository) GetIdentity(ctx context.Context, id string) (models.Identity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, credential_hash, is_default, created_at FROM identities WHERE id = ?`, id)
	return scanIdentity(row)
}

func (r *Repository) GetIdentityByUsername(ctx context.Context, username string) (models.Identity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, credential_hash, is_default, created_at FROM identities WHERE username = ?`, username)
	return scanIdentity(row)
}

func (r *Repository) CountIdentities(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&n)
	return n, err
}

// ClearDefaultAccounts drops the bootstrap flag from every identity. Called
// once a regular account has been created and used.
func (r *Repository) ClearDefaultAccounts(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE identities SET is_default = 0 WHERE is_default = 1`)
	return err
}

func scanIdentity(row *sql.Row) (models.Identity, error) {
	var ident models.Identity
	var isDefault int
	if err := row.Scan(&ident.ID, &ident.Username, &ident.CredentialHash, &isDefault, &ident.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, repository.ErrNotFound
		}
		return models.Identity{}, err
	}
	ident.IsDefaultAccount = isDefault != 0
	return ident, nil
}

// Sessions

func (r *Repository) CreateSession(ctx context.Context, s models.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions(token, identity_id, created_at, expires_at) VALUES(?,?,?,?)`,
		s.Token, s.IdentityID, s.CreatedAt, s.ExpiresAt)
	return err
}

// GetSession returns the stored session for token. Expired sessions are
// purged here so the store never resolves a stale token twice.
func (r *Repository) GetSession(ctx context.Context, token string) (models.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT token, identity_id, created_at, expires_at FROM sessions WHERE token = ?`, token)
	var s models.Session
	if err := row.Scan(&s.Token, &s.IdentityID, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, repository.ErrSessionMissing
		}
		return models.Session{}, err
	}
	if time.Now().UTC().After(s.ExpiresAt) {
		_ = r.DeleteSession(ctx, token)
		return models.Session{}, repository.ErrSessionExpired
	}
	return s, nil
}

// DeleteSession is idempotent; removing an unknown token is a no-op.
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// Observations

func (r *Repository) CreateObservation(ctx context.Context, rec models.ObservationRecord) (models.ObservationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ObservationRecord{}, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := nextObservationID(ctx, tx)
	if err != nil {
		return models.ObservationRecord{}, err
	}
	rec.ID = id
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := insertObservation(ctx, tx, rec); err != nil {
		return models.ObservationRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.ObservationRecord{}, err
	}
	return rec, nil
}

// BulkInsertObservations inserts every record with a freshly assigned id in
// a single transaction and returns the ids in input order. IDs embedded in
// the input are ignored.
func (r *Repository) BulkInsertObservations(ctx context.Context, recs []models.ObservationRecord) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	next, err := nextObservationID(ctx, tx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		rec.ID = next
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if err := insertObservation(ctx, tx, rec); err != nil {
			return nil, err
		}
		ids = append(ids, next)
		next++
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) GetObservation(ctx context.Context, id int64) (models.ObservationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, obs_date, obs_time, person, vehicle, location, images, created_at, updated_at
		 FROM observations WHERE id = ?`, id)
	rec, err := scanObservation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ObservationRecord{}, repository.ErrNotFound
		}
		return models.ObservationRecord{}, err
	}
	return rec, nil
}

// ReplaceObservation stores the full post-merge record under its existing id.
func (r *Repository) ReplaceObservation(ctx context.Context, rec models.ObservationRecord) (models.ObservationRecord, error) {
	rec.UpdatedAt = time.Now().UTC()
	person, vehicle, location, images, err := marshalBlocks(rec)
	if err != nil {
		return models.ObservationRecord{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE observations SET obs_date=?, obs_time=?, person=?, vehicle=?, location=?, images=?, updated_at=? WHERE id=?`,
		rec.Date, rec.Time, person, vehicle, location, images, rec.UpdatedAt, rec.ID)
	if err != nil {
		return models.ObservationRecord{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return models.ObservationRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (r *Repository) ListObservations(ctx context.Context) ([]models.ObservationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, obs_date, obs_time, person, vehicle, location, images, created_at, updated_at
		 FROM observations ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ObservationRecord{}
	for rows.Next() {
		rec, err := scanObservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nextObservationID(ctx context.Context, tx *sql.Tx) (int64, error) {
	var next int64
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM observations`).Scan(&next)
	return next, err
}

func insertObservation(ctx context.Context, tx *sql.Tx, rec models.ObservationRecord) error {
	person, vehicle, location, images, err := marshalBlocks(rec)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO observations(id, obs_date, obs_time, person, vehicle, location, images, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Date, rec.Time, person, vehicle, location, images, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func marshalBlocks(rec models.ObservationRecord) (person, vehicle, location, images []byte, err error) {
	if person, err = json.Marshal(rec.Person); err != nil {
		return
	}
	if vehicle, err = json.Marshal(rec.Vehicle); err != nil {
		return
	}
	if rec.Location != nil {
		if location, err = json.Marshal(rec.Location); err != nil {
			return
		}
	}
	if rec.Images == nil {
		rec.Images = []models.ImageRef{}
	}
	images, err = json.Marshal(rec.Images)
	return
}

func scanObservation(scan func(...any) error) (models.ObservationRecord, error) {
	var rec models.ObservationRecord
	var person, vehicle, location, images []byte
	if err := scan(&rec.ID, &rec.Date, &rec.Time, &person, &vehicle, &location, &images, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return models.ObservationRecord{}, err
	}
	if err := json.Unmarshal(person, &rec.Person); err != nil {
		return models.ObservationRecord{}, err
	}
	if err := json.Unmarshal(vehicle, &rec.Vehicle); err != nil {
		return models.ObservationRecord{}, err
	}
	if len(location) > 0 {
		rec.Location = &models.IncidentLocation{}
		if err := json.Unmarshal(location, rec.Location); err != nil {
			return models.ObservationRecord{}, err
		}
	}
	rec.Images = []models.ImageRef{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &rec.Images); err != nil {
			return models.ObservationRecord{}, err
		}
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
