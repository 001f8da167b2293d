package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArtifact(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write artifact %s: %v", name, err)
	}
}

func writeValidBundle(t *testing.T, dir string) {
	t.Helper()
	writeArtifact(t, dir, KeyScaler, `{"mean":[1,2],"scale":[0.5,1]}`)
	writeArtifact(t, dir, KeyPCA, `{"mean":[0,0],"components":[[1,0]]}`)
	writeArtifact(t, dir, KeyKMeans, `{"centroids":[[-1],[1]]}`)
	writeArtifact(t, dir, KeyClusterScores, `{"0":{"min":300,"max":500},"1":{"min":600,"max":800}}`)
	writeArtifact(t, dir, KeyFeatureColumns, `["total_transactions","total_deposit_amount"]`)
}

func TestLoadBundle(t *testing.T) {
	dir := t.TempDir()
	writeValidBundle(t, dir)

	bundle, err := LoadBundle(NewFileStore(dir))
	if err != nil {
		t.Fatalf("load bundle failed: %v", err)
	}

	if len(bundle.Scaler.Mean) != 2 || bundle.Scaler.Scale[0] != 0.5 {
		t.Fatalf("unexpected scaler: %#v", bundle.Scaler)
	}
	if len(bundle.PCA.Components) != 1 {
		t.Fatalf("expected one retained component, got %d", len(bundle.PCA.Components))
	}
	if len(bundle.KMeans.Centroids) != 2 {
		t.Fatalf("expected two centroids, got %d", len(bundle.KMeans.Centroids))
	}
	if rng := bundle.ClusterScores[1]; rng.Min != 600 || rng.Max != 800 {
		t.Fatalf("unexpected cluster 1 range: %#v", rng)
	}
	if len(bundle.FeatureColumns) != 2 || bundle.FeatureColumns[0] != "total_transactions" {
		t.Fatalf("unexpected feature columns: %v", bundle.FeatureColumns)
	}
}

func TestLoadBundleMissingArtifactNamesIt(t *testing.T) {
	dir := t.TempDir()
	writeValidBundle(t, dir)
	if err := os.Remove(filepath.Join(dir, KeyKMeans+".json")); err != nil {
		t.Fatal(err)
	}

	_, err := LoadBundle(NewFileStore(dir))
	if err == nil {
		t.Fatal("missing artifact must be fatal")
	}
	if !strings.Contains(err.Error(), KeyKMeans) {
		t.Fatalf("error should name the missing artifact: %v", err)
	}
}

func TestLoadBundleBadClusterKey(t *testing.T) {
	dir := t.TempDir()
	writeValidBundle(t, dir)
	writeArtifact(t, dir, KeyClusterScores, `{"not-a-number":{"min":0,"max":1}}`)

	_, err := LoadBundle(NewFileStore(dir))
	if err == nil || !strings.Contains(err.Error(), KeyClusterScores) {
		t.Fatalf("non-integer cluster id should fail naming the artifact, got %v", err)
	}
}

func TestLoadBundleDegenerateClusterModel(t *testing.T) {
	dir := t.TempDir()
	writeValidBundle(t, dir)
	writeArtifact(t, dir, KeyKMeans, `{"centroids":null}`)

	bundle, err := LoadBundle(NewFileStore(dir))
	if err != nil {
		t.Fatalf("degenerate cluster model must still load: %v", err)
	}
	if len(bundle.KMeans.Centroids) != 0 {
		t.Fatalf("expected no centroids, got %d", len(bundle.KMeans.Centroids))
	}
}
