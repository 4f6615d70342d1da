//go:build semantic

package semantic

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/knights-analytics/hugot"

	"github.com/anthropics/cmdschema/internal/schema"
)

// ModelPathEnv names the environment variable pointing at the ONNX
// sentence-transformer model directory. There is no bundled default:
// the operator must supply a model compatible with hugot's feature
// extraction pipeline (e.g. a MiniLM export).
const ModelPathEnv = "CMDSCHEMA_SEMANTIC_MODEL"

var (
	embedderOnce sync.Once
	embedder     *hugotEmbedder
	embedderErr  error
)

type hugotEmbedder struct {
	session  *hugot.Session
	pipeline *hugot.FeatureExtractionPipeline
}

func loadEmbedder() (*hugotEmbedder, error) {
	embedderOnce.Do(func() {
		modelPath := os.Getenv(ModelPathEnv)
		if modelPath == "" {
			embedderErr = fmt.Errorf("semantic: %s is not set; no model path supplied", ModelPathEnv)
			return
		}

		session, err := hugot.NewORTSession()
		if err != nil {
			embedderErr = fmt.Errorf("semantic: starting onnxruntime session: %w", err)
			return
		}

		pipelineConfig := hugot.FeatureExtractionConfig{
			ModelPath: modelPath,
			Name:      "cmdschema-description-embedder",
		}
		pipeline, err := hugot.NewPipeline(session, pipelineConfig)
		if err != nil {
			session.Destroy()
			embedderErr = fmt.Errorf("semantic: loading feature extraction pipeline: %w", err)
			return
		}

		embedder = &hugotEmbedder{session: session, pipeline: pipeline}
	})
	return embedder, embedderErr
}

func enabled() bool {
	_, err := loadEmbedder()
	return err == nil
}

// cluster embeds every flag/subcommand description in pkg and pairs up
// any two whose cosine similarity clears similarityThreshold. It batches
// all descriptions into a single pipeline call, matching the teacher's
// own EmbedBatch shape for amortizing model overhead across many short
// strings.
func cluster(ctx context.Context, pkg schema.SchemaPackage) ([]Hint, error) {
	e, err := loadEmbedder()
	if err != nil {
		return nil, err
	}

	entries := collectDescriptions(pkg)
	if len(entries) < 2 {
		return nil, nil
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.description
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result, err := e.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("semantic: running embedding pipeline: %w", err)
	}
	if len(result.Embeddings) != len(entries) {
		return nil, fmt.Errorf("semantic: expected %d embeddings, got %d", len(entries), len(result.Embeddings))
	}

	var hints []Hint
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].command == entries[j].command {
				continue
			}
			sim := cosineSimilarity(result.Embeddings[i], result.Embeddings[j])
			if sim >= similarityThreshold {
				hints = append(hints, Hint{
					Command:    entries[j].command,
					EntryA:     entries[i].label,
					EntryB:     entries[j].label,
					Similarity: sim,
				})
			}
		}
	}
	return hints, nil
}
