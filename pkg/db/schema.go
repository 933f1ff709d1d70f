package db

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS model_categories (
		id                 text PRIMARY KEY,
		name               text NOT NULL,
		description        text NOT NULL DEFAULT '',
		preferred_model_id text,
		created_at         timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS models (
		id               text PRIMARY KEY,
		hf_repo          text NOT NULL,
		filename         text,
		size_bytes       bigint NOT NULL DEFAULT 0,
		category_id      text REFERENCES model_categories(id),
		loaded           boolean NOT NULL DEFAULT false,
		backend_port     int,
		backend_type     text NOT NULL DEFAULT '',
		last_used_at     timestamptz,
		created_at       timestamptz NOT NULL DEFAULT now(),
		context_length   bigint,
		n_layers         bigint,
		n_heads          bigint,
		n_kv_heads       bigint,
		embedding_length bigint
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		id                text PRIMARY KEY,
		name              text NOT NULL,
		user_id           text NOT NULL DEFAULT '',
		category_id       text REFERENCES model_categories(id),
		specific_model_id text REFERENCES models(id),
		expires_at        timestamptz,
		revoked           boolean NOT NULL DEFAULT false,
		created_at        timestamptz NOT NULL DEFAULT now(),
		is_internal       boolean NOT NULL DEFAULT false,
		is_admin          boolean NOT NULL DEFAULT false,
		is_meta           boolean NOT NULL DEFAULT false,
		meta_user_email   text
	)`,
	`CREATE INDEX IF NOT EXISTS tokens_meta_user_email_idx
		ON tokens (meta_user_email) WHERE is_meta AND NOT revoked`,
	`CREATE TABLE IF NOT EXISTS usage_entries (
		id                text PRIMARY KEY,
		token_id          text NOT NULL REFERENCES tokens(id),
		model_id          text NOT NULL REFERENCES models(id),
		prompt_tokens     bigint NOT NULL DEFAULT 0,
		completion_tokens bigint NOT NULL DEFAULT 0,
		recorded_at       timestamptz NOT NULL DEFAULT now(),
		attributed_email  text
	)`,
	`CREATE INDEX IF NOT EXISTS usage_entries_model_recorded_idx
		ON usage_entries (model_id, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id          text PRIMARY KEY,
		user_id     text NOT NULL,
		start_at    timestamptz NOT NULL,
		end_at      timestamptz NOT NULL,
		status      text NOT NULL DEFAULT 'pending',
		reason      text NOT NULL DEFAULT '',
		admin_note  text NOT NULL DEFAULT '',
		approved_by text,
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,
	// Reservations are system-wide, not per-model: the window itself, not
	// any one model, is what the gate checks admission against.
	`CREATE INDEX IF NOT EXISTS reservations_window_idx
		ON reservations (start_at, end_at)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   text PRIMARY KEY,
		value text NOT NULL
	)`,
}
