package db

import "time"

// Model mirrors a row in the models table: a single loadable inference
// model along with the backend port it is currently published on, if any,
// and the architecture metadata read off its GGUF header.
type Model struct {
	ID              string     `db:"id"`
	HFRepo          string     `db:"hf_repo"`
	Filename        *string    `db:"filename"`
	SizeBytes       int64      `db:"size_bytes"`
	CategoryID      *string    `db:"category_id"`
	Loaded          bool       `db:"loaded"`
	BackendPort     *int32     `db:"backend_port"`
	BackendType     string     `db:"backend_type"`
	LastUsedAt      *time.Time `db:"last_used_at"`
	CreatedAt       time.Time  `db:"created_at"`
	ContextLength   *int64     `db:"context_length"`
	NLayers         *int64     `db:"n_layers"`
	NHeads          *int64     `db:"n_heads"`
	NKVHeads        *int64     `db:"n_kv_heads"`
	EmbeddingLength *int64     `db:"embedding_length"`
}

// ModelCategory groups models so a token can be scoped to "whatever model in
// this category is loaded" instead of a specific model id.
type ModelCategory struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	Description       string    `db:"description"`
	PreferredModelID  *string   `db:"preferred_model_id"`
	CreatedAt         time.Time `db:"created_at"`
}

// Token is the subset of token state this scheduler needs to resolve a
// request and attribute its usage. Token issuance and revocation is an
// external system's responsibility; this repo only reads tokens.
//
// UserID, IsInternal, and IsAdmin mirror the (user_id, is_admin, is_internal)
// tuple the authenticating front end is expected to attach to every token:
// UserID identifies the reservation holder a request is checked against,
// IsInternal exempts internal tooling from that check and is the trigger for
// meta-token attribution, and IsAdmin is carried through for completeness
// even though admin status grants no reservation bypass of its own.
type Token struct {
	ID              string     `db:"id"`
	Name            string     `db:"name"`
	UserID          string     `db:"user_id"`
	CategoryID      *string    `db:"category_id"`
	SpecificModelID *string    `db:"specific_model_id"`
	ExpiresAt       *time.Time `db:"expires_at"`
	Revoked         bool       `db:"revoked"`
	CreatedAt       time.Time  `db:"created_at"`
	IsInternal      bool       `db:"is_internal"`
	IsAdmin         bool       `db:"is_admin"`
	IsMeta          bool       `db:"is_meta"`
	MetaUserEmail   *string    `db:"meta_user_email"`
}

// UsageEntry records one completed request's token consumption against a
// token and model, for the fairness calculator's rolling usage window.
type UsageEntry struct {
	ID               string    `db:"id"`
	TokenID          string    `db:"token_id"`
	ModelID          string    `db:"model_id"`
	PromptTokens     int64     `db:"prompt_tokens"`
	CompletionTokens int64     `db:"completion_tokens"`
	RecordedAt       time.Time `db:"recorded_at"`
	AttributedEmail  *string   `db:"attributed_email"`
}

// ReservationStatus is the lifecycle state of a Reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationRejected  ReservationStatus = "rejected"
)

// Reservation is an administrator-declared, system-wide exclusive-access
// window: while one is active, only its holder (UserID) and internal tokens
// may be admitted across every model. Unlike the per-model windows an
// earlier revision of this package modeled, a Reservation carries no
// model_id — the invariant is that at most one row is active at any time,
// system-wide.
type Reservation struct {
	ID         string            `db:"id"`
	UserID     string            `db:"user_id"`
	StartAt    time.Time         `db:"start_at"`
	EndAt      time.Time         `db:"end_at"`
	Status     ReservationStatus `db:"status"`
	Reason     string            `db:"reason"`
	AdminNote  string            `db:"admin_note"`
	ApprovedBy *string           `db:"approved_by"`
	CreatedAt  time.Time         `db:"created_at"`
}
