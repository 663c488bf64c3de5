package embed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
)

// DefaultModel is a sentence transformer producing 384-dimensional vectors.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

// MiniLM runs a sentence-transformer model in-process through hugot's Go
// backend, so embedding works offline once the model files are on disk.
type MiniLM struct {
	session   *hugot.Session
	run       func(texts []string) ([][]float32, error)
	dimension int
}

// NewMiniLM downloads the model on first use and builds the feature
// extraction pipeline. A failed pipeline usually means broken model files in
// the cache, so it retries once against a fresh download before giving up
// with ErrUnavailable.
func NewMiniLM(modelName, modelsDir string) (*MiniLM, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	if modelsDir == "" {
		modelsDir = "./models"
	}

	modelPath, err := prepareModel(modelName, modelsDir, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m, err := newPipeline(modelPath)
	if err == nil {
		return m, nil
	}

	modelPath, derr := prepareModel(modelName, modelsDir, true)
	if derr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m, err = newPipeline(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return m, nil
}

func newPipeline(modelPath string) (*MiniLM, error) {
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "docrag-embedder",
	}
	pipe, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create embedding pipeline: %w", err)
	}

	m := &MiniLM{
		session: session,
		run: func(texts []string) ([][]float32, error) {
			res, err := pipe.RunPipeline(texts)
			if err != nil {
				return nil, err
			}
			return res.Embeddings, nil
		},
	}

	// Probe once so Dimension is known before anything is stored.
	probe, err := m.run([]string{"dimension probe"})
	if err != nil || len(probe) == 0 {
		_ = m.Close()
		return nil, fmt.Errorf("failed to probe embedding dimension: %w", err)
	}
	m.dimension = len(probe[0])

	return m, nil
}

func (m *MiniLM) Embed(text string) ([]float32, error) {
	vecs, err := m.run([]string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding produced")
	}

	return vecs[0], nil
}

func (m *MiniLM) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vecs, err := m.run(texts)
	if err == nil && len(vecs) == len(texts) {
		return vecs, nil
	}

	// A batch can fail on one pathological input; retry item by item so the
	// rest of the document still gets indexed.
	vecs = make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(t)
		if err != nil {
			return nil, fmt.Errorf("failed to embed item %d: %w", i, err)
		}
		vecs[i] = v
	}

	return vecs, nil
}

func (m *MiniLM) Dimension() int { return m.dimension }

func (m *MiniLM) Close() error {
	if m.session == nil {
		return nil
	}

	err := m.session.Destroy()
	m.session = nil
	return err
}

func prepareModel(modelName, modelsDir string, force bool) (string, error) {
	modelPath := filepath.Join(modelsDir, strings.ReplaceAll(modelName, "/", "_"))

	if force {
		if err := os.RemoveAll(modelPath); err != nil {
			return "", fmt.Errorf("failed to clear model cache: %w", err)
		}
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelsDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}

		opts := hugot.NewDownloadOptions()
		opts.OnnxFilePath = "onnx/model.onnx"
		downloaded, err := hugot.DownloadModel(modelName, modelsDir, opts)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloaded
	}

	return modelPath, nil
}
