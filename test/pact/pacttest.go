//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "shelter-api"
	ConsumerName = "adoption-desk"

	StateAnimalSheltered  = "animal 1 is sheltered"
	StateAdoptionRequest  = "adoption 1 is requested"
	StateAdoptionApproved = "adoption 1 is approved"
	StateAdoptionMissing  = "no adoption with id 404"
)

const (
	ExistingAnimalID   int64 = 1
	ExistingAdoptionID int64 = 1
	MissingAdoptionID  int64 = 404

	AdoptedAt = "2024-01-10T00:00:00Z"
)

// ExampleAdoptionRequest is the body the desk sends when a visitor applies.
func ExampleAdoptionRequest() map[string]any {
	return map[string]any{
		"animalId":       ExistingAnimalID,
		"applicantName":  "Kim Minji",
		"applicantPhone": "010-1234-5678",
	}
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
