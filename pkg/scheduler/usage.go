package scheduler

import (
	"context"
	"time"

	"github.com/fairgate/scheduler/pkg/db"
	"github.com/fairgate/scheduler/pkg/logging"
)

// UsageRecorder logs completed request token counts and resolves the
// rolling usage figure the fairness formula needs.
type UsageRecorder struct {
	database *db.Database
	settings *SettingsStore
	log      logging.Logger
}

// NewUsageRecorder constructs a UsageRecorder.
func NewUsageRecorder(database *db.Database, settings *SettingsStore, log logging.Logger) *UsageRecorder {
	return &UsageRecorder{database: database, settings: settings, log: log}
}

// Recent returns the token total a token has consumed within the current
// usage window, used as the fairness formula's recentTokens input.
func (u *UsageRecorder) Recent(ctx context.Context, tokenID string) (int64, error) {
	tok, err := u.database.GetToken(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	window := time.Duration(u.settings.Load().WindowMinutes) * time.Minute
	// Usage is tracked per model for the per-model fairness calculation,
	// but a token's standing across all models it touches is what the
	// fairness formula penalizes, so sum across every model it used.
	return u.database.SumRecentUsageByToken(ctx, tok.ID, window)
}

// Record logs one completed request's token consumption against tok.
//
// If tok is an internal token and userEmail (the request body's "user"
// field) is non-empty, usage is instead attributed via the meta-token
// mechanism: find (or create) the single non-revoked meta token for that
// email and log under it, so internal-tooling traffic proxied through one
// shared internal token is billed per actual user rather than lumped under
// the internal token's own identity. An unresolvable or empty email falls
// back to logging directly under tok — the internal token's own owner. This
// is bookkeeping only: it never alters gate or reservation behavior.
func (u *UsageRecorder) Record(ctx context.Context, tok db.Token, userEmail, modelID string, promptTokens, completionTokens int64) error {
	tokenID := tok.ID
	var attributed *string

	if tok.IsInternal && userEmail != "" {
		metaTok, err := u.resolveMetaToken(ctx, tok, userEmail)
		if err != nil {
			u.log.WithError(err).Warn("failed to resolve meta token, falling back to the internal token")
		} else {
			tokenID = metaTok.ID
			attributed = &userEmail
		}
	}

	return u.database.InsertUsageEntry(ctx, db.UsageEntry{
		ID:               newID(),
		TokenID:          tokenID,
		ModelID:          modelID,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		RecordedAt:       time.Now(),
		AttributedEmail:  attributed,
	})
}

// resolveMetaToken ensures a single non-revoked meta token exists for email,
// owned by the same user as the internal token that triggered its creation,
// creating one if none is found.
func (u *UsageRecorder) resolveMetaToken(ctx context.Context, internalTok db.Token, email string) (db.Token, error) {
	existing, err := u.database.FindMetaTokenByEmail(ctx, email)
	if err != nil {
		return db.Token{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	created := db.Token{
		ID:            newID(),
		Name:          "meta:" + email,
		UserID:        internalTok.UserID,
		CreatedAt:     time.Now(),
		IsMeta:        true,
		MetaUserEmail: &email,
	}
	if err := u.database.InsertMetaToken(ctx, created); err != nil {
		return db.Token{}, err
	}
	return created, nil
}
