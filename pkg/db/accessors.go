package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetModel fetches a model by id.
func (d *Database) GetModel(ctx context.Context, id string) (Model, error) {
	return scanOne[Model](ctx, d.pool, `SELECT * FROM models WHERE id = $1`, id)
}

// GetModelByHFRepo fetches a model by its hf_repo identifier.
func (d *Database) GetModelByHFRepo(ctx context.Context, hfRepo string) (Model, error) {
	return scanOne[Model](ctx, d.pool, `SELECT * FROM models WHERE hf_repo = $1`, hfRepo)
}

// ListLoadedModels returns every model currently marked loaded.
func (d *Database) ListLoadedModels(ctx context.Context) ([]Model, error) {
	return scanMany[Model](ctx, d.pool, `SELECT * FROM models WHERE loaded = true`)
}

// ListModelsByCategory returns every loaded model within a category, most
// recently used first.
func (d *Database) ListModelsByCategory(ctx context.Context, categoryID string) ([]Model, error) {
	return scanMany[Model](ctx, d.pool,
		`SELECT * FROM models WHERE category_id = $1 AND loaded = true
		 ORDER BY last_used_at DESC NULLS LAST`, categoryID)
}

// TouchModelLastUsed updates a model's last_used_at to now.
func (d *Database) TouchModelLastUsed(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, `UPDATE models SET last_used_at = now() WHERE id = $1`, id)
	return err
}

// ModelArchitecture is the GGUF header metadata used to size a model's
// context and compute footprint, populated by an ingestion pass rather than
// at request time.
type ModelArchitecture struct {
	ContextLength   int64
	NLayers         int64
	NHeads          int64
	NKVHeads        int64
	EmbeddingLength int64
}

// UpdateModelArchitecture records a model's GGUF architecture metadata.
func (d *Database) UpdateModelArchitecture(ctx context.Context, modelID string, arch ModelArchitecture) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE models
		SET context_length = $2, n_layers = $3, n_heads = $4, n_kv_heads = $5, embedding_length = $6
		WHERE id = $1`,
		modelID, arch.ContextLength, arch.NLayers, arch.NHeads, arch.NKVHeads, arch.EmbeddingLength)
	return err
}

// GetCategory fetches a category by id.
func (d *Database) GetCategory(ctx context.Context, id string) (ModelCategory, error) {
	return scanOne[ModelCategory](ctx, d.pool, `SELECT * FROM model_categories WHERE id = $1`, id)
}

// GetCategoryByName fetches a category by its display name.
func (d *Database) GetCategoryByName(ctx context.Context, name string) (ModelCategory, error) {
	return scanOne[ModelCategory](ctx, d.pool, `SELECT * FROM model_categories WHERE name = $1`, name)
}

// GetToken fetches a token by id.
func (d *Database) GetToken(ctx context.Context, id string) (Token, error) {
	return scanOne[Token](ctx, d.pool, `SELECT * FROM tokens WHERE id = $1`, id)
}

// FindMetaTokenByEmail returns the single non-revoked meta token attributing
// to email, if one exists.
func (d *Database) FindMetaTokenByEmail(ctx context.Context, email string) (*Token, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT * FROM tokens
		WHERE is_meta = true AND NOT revoked AND meta_user_email = $1
		LIMIT 1`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	toks, err := pgx.CollectRows(rows, pgx.RowToStructByName[Token])
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, nil
	}
	return &toks[0], nil
}

// InsertMetaToken creates a new non-revoked meta token attributing to email,
// owned by the same user as the internal token that triggered its creation.
func (d *Database) InsertMetaToken(ctx context.Context, tok Token) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO tokens (id, name, user_id, expires_at, revoked, created_at, is_internal, is_admin, is_meta, meta_user_email)
		VALUES ($1, $2, $3, $4, false, $5, false, false, true, $6)`,
		tok.ID, tok.Name, tok.UserID, tok.ExpiresAt, tok.CreatedAt, tok.MetaUserEmail)
	return err
}

// InsertUsageEntry records one request's token consumption.
func (d *Database) InsertUsageEntry(ctx context.Context, e UsageEntry) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO usage_entries (id, token_id, model_id, prompt_tokens, completion_tokens, recorded_at, attributed_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.TokenID, e.ModelID, e.PromptTokens, e.CompletionTokens, e.RecordedAt, e.AttributedEmail)
	return err
}

// SumRecentUsage returns the total prompt+completion tokens recorded for a
// model within the trailing window.
func (d *Database) SumRecentUsage(ctx context.Context, modelID string, window time.Duration) (int64, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(prompt_tokens + completion_tokens), 0)
		FROM usage_entries
		WHERE model_id = $1 AND recorded_at >= $2`,
		modelID, time.Now().Add(-window))
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// SumRecentUsageByToken returns the total prompt+completion tokens a token
// has consumed across every model within the trailing window.
func (d *Database) SumRecentUsageByToken(ctx context.Context, tokenID string, window time.Duration) (int64, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(prompt_tokens + completion_tokens), 0)
		FROM usage_entries
		WHERE token_id = $1 AND recorded_at >= $2`,
		tokenID, time.Now().Add(-window))
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ListSettings returns every key/value row in the settings table.
func (d *Database) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := d.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// UpsertSetting writes a single setting key/value pair.
func (d *Database) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

// ListReservations returns every reservation, ordered by start time. The
// reservation window is system-wide, not per-model, so there is no
// model-scoped variant of this listing.
func (d *Database) ListReservations(ctx context.Context) ([]Reservation, error) {
	return scanMany[Reservation](ctx, d.pool, `SELECT * FROM reservations ORDER BY start_at`)
}

// GetReservation fetches a single reservation by id.
func (d *Database) GetReservation(ctx context.Context, id string) (Reservation, error) {
	return scanOne[Reservation](ctx, d.pool, `SELECT * FROM reservations WHERE id = $1`, id)
}

// InsertReservation creates a new reservation row in the pending state.
func (d *Database) InsertReservation(ctx context.Context, r Reservation) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO reservations (id, user_id, start_at, end_at, status, reason, admin_note, approved_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.UserID, r.StartAt, r.EndAt, r.Status, r.Reason, r.AdminNote, r.ApprovedBy, r.CreatedAt)
	return err
}

// UpdateReservationStatus transitions a reservation to a new status,
// optionally recording an admin note and/or the admin who approved it. A nil
// approvedBy leaves the column untouched.
func (d *Database) UpdateReservationStatus(ctx context.Context, id string, status ReservationStatus, adminNote string, approvedBy *string) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE reservations
		SET status = $2,
		    admin_note = CASE WHEN $3 = '' THEN admin_note ELSE $3 END,
		    approved_by = COALESCE($4, approved_by)
		WHERE id = $1`, id, status, adminNote, approvedBy)
	return err
}

// DeleteReservation removes a reservation row entirely, used by the delete
// transition (distinct from cancel, which only changes status).
func (d *Database) DeleteReservation(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	return err
}

// FindActiveReservation returns the single reservation (if any) currently in
// the active state. Invariant: at most one reservation is active at a time,
// system-wide.
func (d *Database) FindActiveReservation(ctx context.Context) (*Reservation, error) {
	rows, err := d.pool.Query(ctx, `SELECT * FROM reservations WHERE status = 'active' LIMIT 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	r, err := pgx.CollectRows(rows, pgx.RowToStructByName[Reservation])
	if err != nil {
		return nil, err
	}
	if len(r) == 0 {
		return nil, nil
	}
	return &r[0], nil
}

// FindOverlappingReservation returns a reservation whose [start_at, end_at)
// window intersects the given window and is not cancelled/rejected/
// completed, excluding excludeID (used when re-checking at approval time).
// Adjacency (end == start) does not count as overlap.
func (d *Database) FindOverlappingReservation(ctx context.Context, start, end time.Time, excludeID string) (*Reservation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT * FROM reservations
		WHERE status IN ('pending', 'approved', 'active')
		  AND id != $1
		  AND start_at < $3 AND end_at > $2
		LIMIT 1`, excludeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	r, err := pgx.CollectRows(rows, pgx.RowToStructByName[Reservation])
	if err != nil {
		return nil, err
	}
	if len(r) == 0 {
		return nil, nil
	}
	return &r[0], nil
}

// PendingOrApprovedReservations returns reservations the tick loop needs to
// examine: anything not yet in a terminal state.
func (d *Database) PendingOrApprovedReservations(ctx context.Context) ([]Reservation, error) {
	return scanMany[Reservation](ctx, d.pool,
		`SELECT * FROM reservations WHERE status IN ('pending', 'approved', 'active') ORDER BY start_at`)
}
