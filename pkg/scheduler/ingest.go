package scheduler

import (
	"context"
	"fmt"

	parser "github.com/gpustack/gguf-parser-go"

	"github.com/fairgate/scheduler/pkg/db"
)

// IngestGGUF reads a model file's GGUF header and records its architecture
// metadata (context length, layer/head counts) against the given model id,
// the same header fields the teacher's llama.cpp backend reads off a
// GGUFFile to size its memory estimate, here used instead to populate the
// columns the resolver reports to callers and the admin dashboard.
func IngestGGUF(ctx context.Context, database *db.Database, modelID, path string) error {
	gf, err := parser.ParseGGUFFile(path)
	if err != nil {
		return fmt.Errorf("parsing gguf file %s: %w", path, err)
	}

	arch, err := gf.Architecture()
	if err != nil {
		return fmt.Errorf("reading gguf architecture: %w", err)
	}

	return database.UpdateModelArchitecture(ctx, modelID, db.ModelArchitecture{
		ContextLength:   int64(arch.MaxContextLength),
		NLayers:         int64(arch.BlockCount),
		NHeads:          int64(arch.AttentionHeadCount),
		NKVHeads:        int64(arch.AttentionHeadCountKV),
		EmbeddingLength: int64(arch.EmbeddingLength),
	})
}
