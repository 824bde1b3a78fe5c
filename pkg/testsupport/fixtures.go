package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-catalog-browser/catalog"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadResources loads a JSON array of catalog resources.
func LoadResources(t testing.TB, path string) []catalog.Resource {
	t.Helper()

	var records []catalog.Resource
	LoadFixtureJSON(t, path, &records)
	return records
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// fixtureEpoch anchors generated UpdatedAt values so ordering is stable.
var fixtureEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// GenerateResources builds n resources in category carrying tags.
// Record i is one minute newer than record i+1, so newest-first order is
// the generation order.
func GenerateResources(n int, category string, tags ...string) []catalog.Resource {
	records := make([]catalog.Resource, n)
	for i := range records {
		records[i] = catalog.Resource{
			ID:          fmt.Sprintf("%s-%03d", category, i+1),
			Title:       fmt.Sprintf("%s resource %d", category, i+1),
			URL:         fmt.Sprintf("https://example.com/%s/%d", category, i+1),
			Description: fmt.Sprintf("Curated %s link number %d", category, i+1),
			Category:    category,
			Tags:        append([]string(nil), tags...),
			Rating:      4,
			Reviews:     i,
			UpdatedAt:   fixtureEpoch.Add(time.Duration(n-i) * time.Minute),
		}
	}
	return records
}

// MustJSON marshals v or fails the test.
func MustJSON(t testing.TB, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}
