package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Artifact key names produced by the offline training run.
const (
	KeyScaler         = "scaler"
	KeyPCA            = "pca"
	KeyKMeans         = "kmeans"
	KeyClusterScores  = "cluster_scores"
	KeyFeatureColumns = "feature_columns"
)

// Scaler holds the frozen per-column standardization parameters.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// PCA holds the frozen linear projection. Components is retained-components
// rows by trained-columns columns; zero rows means nothing discriminative
// was learned.
type PCA struct {
	Mean       []float64   `json:"mean"`
	Components [][]float64 `json:"components"`
}

// KMeans holds the learned cluster centroids in the reduced space. An empty
// centroid set represents the degenerate single-cluster training, where no
// assignment model exists.
type KMeans struct {
	Centroids [][]float64 `json:"centroids"`
}

// ScoreRange is the score interval assigned to one cluster.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Bundle aggregates the five trained artifacts the scoring chain depends on.
// It is immutable for the lifetime of a pipeline invocation.
type Bundle struct {
	Scaler         Scaler
	PCA            PCA
	KMeans         KMeans
	ClusterScores  map[int]ScoreRange
	FeatureColumns []string
}

// Store loads trained artifacts by key name.
type Store interface {
	Load(name string, out any) error
}

// FileStore reads artifacts as <key>.json files from a directory.
type FileStore struct {
	dir string
}

// NewFileStore wires a models directory into a Store.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Load decodes the named artifact into out.
func (s *FileStore) Load(name string, out any) error {
	path := filepath.Join(s.dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)

// LoadBundle loads all five artifacts. Any miss is fatal to scoring and the
// returned error names the artifact that could not be loaded.
func LoadBundle(store Store) (*Bundle, error) {
	bundle := &Bundle{}

	if err := store.Load(KeyScaler, &bundle.Scaler); err != nil {
		return nil, loadErr(KeyScaler, err)
	}
	if err := store.Load(KeyPCA, &bundle.PCA); err != nil {
		return nil, loadErr(KeyPCA, err)
	}
	if err := store.Load(KeyKMeans, &bundle.KMeans); err != nil {
		return nil, loadErr(KeyKMeans, err)
	}

	var rawScores map[string]ScoreRange
	if err := store.Load(KeyClusterScores, &rawScores); err != nil {
		return nil, loadErr(KeyClusterScores, err)
	}
	bundle.ClusterScores = make(map[int]ScoreRange, len(rawScores))
	for key, rng := range rawScores {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, loadErr(KeyClusterScores, fmt.Errorf("non-integer cluster id %q", key))
		}
		bundle.ClusterScores[id] = rng
	}

	if err := store.Load(KeyFeatureColumns, &bundle.FeatureColumns); err != nil {
		return nil, loadErr(KeyFeatureColumns, err)
	}

	return bundle, nil
}

func loadErr(name string, err error) error {
	return fmt.Errorf("load artifact %q: %w", name, err)
}
