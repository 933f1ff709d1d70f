package scheduler

import (
	"context"
	"errors"

	"github.com/fairgate/scheduler/pkg/db"
)

// ResolvedModel is the outcome of resolving an incoming request to a
// concrete model; Loaded reports whether that model is currently loaded.
type ResolvedModel struct {
	ModelID         string
	HFRepo          string
	Loaded          bool
	BackendPort     int32
	ContextLength   int64
	NLayers         int64
	NHeads          int64
	NKVHeads        int64
	EmbeddingLength int64
}

// Resolver maps a token and an optional requested model name to a single
// model, following a fixed precedence so that a token's scope is never
// silently widened:
//
//  1. token.specific_model_id, if set — resolves to that model whether or
//     not it is loaded; the caller checks Loaded.
//  2. token.category_id, if set — prefer the category's preferred_model_id
//     if it is loaded; otherwise the most-recently-used loaded model in
//     the category; otherwise the preferred model even if unloaded (which
//     resolves but is reported not-ready rather than falling through).
//     A category with no loaded models and no preferred model is
//     ErrCategoryEmpty — resolution MUST NOT fall through to an
//     unrestricted model in this case.
//  3. the request's model_name, if set — tried as a model id, then as an
//     hf_repo, then as a category name.
//  4. otherwise ErrModelNotFound.
type Resolver struct {
	database *db.Database
}

// NewResolver constructs a Resolver backed by database.
func NewResolver(database *db.Database) *Resolver {
	return &Resolver{database: database}
}

// Resolve implements the precedence documented on Resolver.
func (r *Resolver) Resolve(ctx context.Context, tok db.Token, requestedModelName string) (ResolvedModel, error) {
	if tok.SpecificModelID != nil {
		m, err := r.database.GetModel(ctx, *tok.SpecificModelID)
		if err != nil {
			return ResolvedModel{}, newError(KindNotFound, "specific model not found", err)
		}
		return toResolved(m), nil
	}

	if tok.CategoryID != nil {
		return r.resolveCategory(ctx, *tok.CategoryID)
	}

	if requestedModelName != "" {
		if m, err := r.database.GetModel(ctx, requestedModelName); err == nil {
			return toResolved(m), nil
		}
		if m, err := r.database.GetModelByHFRepo(ctx, requestedModelName); err == nil {
			return toResolved(m), nil
		}
		if cat, err := r.database.GetCategoryByName(ctx, requestedModelName); err == nil {
			return r.resolveCategory(ctx, cat.ID)
		}
	}

	return ResolvedModel{}, newError(KindNotFound, "model not found", ErrModelNotFound)
}

func (r *Resolver) resolveCategory(ctx context.Context, categoryID string) (ResolvedModel, error) {
	cat, err := r.database.GetCategory(ctx, categoryID)
	if err != nil {
		return ResolvedModel{}, newError(KindNotFound, "category not found", err)
	}

	if cat.PreferredModelID != nil {
		if m, err := r.database.GetModel(ctx, *cat.PreferredModelID); err == nil && m.Loaded {
			return toResolved(m), nil
		}
	}

	loaded, err := r.database.ListModelsByCategory(ctx, categoryID)
	if err != nil {
		return ResolvedModel{}, newError(KindUnavailable, "listing category models", err)
	}
	if len(loaded) > 0 {
		// ListModelsByCategory orders most-recently-used first.
		return toResolved(loaded[0]), nil
	}

	if cat.PreferredModelID != nil {
		m, err := r.database.GetModel(ctx, *cat.PreferredModelID)
		if err == nil {
			return toResolved(m), nil
		}
	}

	return ResolvedModel{}, newError(KindNotFound, "category has no loaded models", ErrCategoryEmpty)
}

func toResolved(m db.Model) ResolvedModel {
	rm := ResolvedModel{ModelID: m.ID, HFRepo: m.HFRepo, Loaded: m.Loaded}
	if m.BackendPort != nil {
		rm.BackendPort = *m.BackendPort
	}
	if m.ContextLength != nil {
		rm.ContextLength = *m.ContextLength
	}
	if m.NLayers != nil {
		rm.NLayers = *m.NLayers
	}
	if m.NHeads != nil {
		rm.NHeads = *m.NHeads
	}
	if m.NKVHeads != nil {
		rm.NKVHeads = *m.NKVHeads
	}
	if m.EmbeddingLength != nil {
		rm.EmbeddingLength = *m.EmbeddingLength
	}
	return rm
}

// IsNotFound reports whether err represents an unresolved model, useful for
// HTTP handlers mapping to a 404.
func IsNotFound(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == KindNotFound
	}
	return errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrCategoryEmpty)
}
