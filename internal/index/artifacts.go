package index

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trotybot/wikirag/internal/chunker"
	"github.com/trotybot/wikirag/internal/vectorindex"
)

const (
	chunksFile  = "chunks.json"
	vectorsFile = "embeddings.gob"
)

// vectorArtifact is the persisted embedding matrix, tagged with the model
// that produced it so a model or dimension change forces a rebuild instead
// of mixing incompatible vector spaces.
type vectorArtifact struct {
	Model      string
	Dimensions int
	Vectors    [][]float32
}

func (i *Index) chunksPath() string  { return filepath.Join(i.cfg.DataDir, chunksFile) }
func (i *Index) vectorsPath() string { return filepath.Join(i.cfg.DataDir, vectorsFile) }

// saveArtifacts writes the chunk list and embedding matrix under DataDir.
// Both writes go through a temp file and rename so a crash never leaves a
// truncated artifact next to a matching fingerprint.
func (i *Index) saveArtifacts(chunks []chunker.Chunk, vectors [][]float32) error {
	if err := os.MkdirAll(i.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := writeAtomic(i.chunksPath(), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}

	artifact := vectorArtifact{
		Model:      i.embedder.Name(),
		Dimensions: i.embedder.Dimensions(),
		Vectors:    vectors,
	}
	if err := writeAtomic(i.vectorsPath(), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(artifact)
	}); err != nil {
		return fmt.Errorf("writing embeddings: %w", err)
	}
	return nil
}

// loadArtifacts restores a persisted build whose fingerprint already
// matched. Any inconsistency (missing file, decode failure, model or count
// mismatch) is returned as an error; the caller falls back to a rebuild.
func (i *Index) loadArtifacts(fp string) error {
	chunksData, err := os.ReadFile(i.chunksPath())
	if err != nil {
		return fmt.Errorf("reading chunks: %w", err)
	}
	var chunks []chunker.Chunk
	if err := json.Unmarshal(chunksData, &chunks); err != nil {
		return fmt.Errorf("decoding chunks: %w", err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("persisted chunk list is empty")
	}

	f, err := os.Open(i.vectorsPath())
	if err != nil {
		return fmt.Errorf("reading embeddings: %w", err)
	}
	defer f.Close()
	var artifact vectorArtifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return fmt.Errorf("decoding embeddings: %w", err)
	}

	if artifact.Model != i.embedder.Name() || artifact.Dimensions != i.embedder.Dimensions() {
		return fmt.Errorf("embeddings built with %s/%d, current embedder is %s/%d",
			artifact.Model, artifact.Dimensions, i.embedder.Name(), i.embedder.Dimensions())
	}
	if len(artifact.Vectors) != len(chunks) {
		return fmt.Errorf("embedding count %d does not match chunk count %d", len(artifact.Vectors), len(chunks))
	}

	vec, err := vectorindex.New(i.cfg.VectorBackend, artifact.Vectors)
	if err != nil {
		return fmt.Errorf("building vector index: %w", err)
	}

	i.install(chunks, vec, fp)
	return nil
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
