package areacodes

import (
	"path"
	"testing"

	"github.com/spf13/afero"
)

// fixtureDir is the directory fixture sources are written to.
const fixtureDir = "codes"

const usFixture = `[
  {"code": "212", "country": "US", "region": "New York", "city": "New York", "e164": "1212", "notes": "Manhattan"},
  {"code": "718", "country": "US", "region": "New York", "city": "New York", "e164": "1718", "notes": "Outer boroughs"},
  {"code": "213", "country": "US", "region": "California", "city": "Los Angeles", "e164": "1213", "notes": ""},
  {"code": "917", "country": "US", "region": "New York", "city": "", "e164": "1917", "notes": "Mobile overlay"}
]`

const byFixture = `[
  {"code": "17", "country": "BY", "region": "Minsk", "city": "Minsk", "e164": "37517", "notes": "Capital"},
  {"code": "212", "country": "BY", "region": "Vitebsk Region", "city": "Vitebsk", "e164": "375212", "notes": ""}
]`

// miscFixture does not follow the <ID>-codes.json convention and is only
// reachable through the full dataset.
const miscFixture = `[
  {"code": "787", "country": "PR", "region": "Puerto Rico", "city": "San Juan", "e164": "1787", "notes": ""},
  {"code": "221", "country": "DE", "region": "Nordrhein-Westfalen", "city": "Köln", "e164": "49221", "notes": ""}
]`

// standardFixtures returns the fixture sources keyed by file name.
func standardFixtures() map[string]string {
	return map[string]string{
		"US-codes.json": usFixture,
		"BY-codes.json": byFixture,
		"misc.json":     miscFixture,
		"README.txt":    "not a source",
	}
}

// newFixtureFs writes files into fixtureDir on an in-memory filesystem.
func newFixtureFs(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll(fixtureDir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if err := afero.WriteFile(fsys, path.Join(fixtureDir, name), []byte(body), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return fsys
}

// fixtureCodes returns the decoded records of the standard fixtures in
// load order (BY, US, misc).
func fixtureCodes(t testing.TB) []AreaCode {
	t.Helper()
	codes, err := NewFileLoader(newFixtureFs(t, standardFixtures()), fixtureDir).LoadAll(t.Context())
	if err != nil {
		t.Fatalf("loading fixtures: %v", err)
	}
	return codes
}
