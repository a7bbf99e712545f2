package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/jobskills/internal/store"
)

func TestMaterialize_BuildsMissingOnce(t *testing.T) {
	dir, db := testEnv(t)

	out := run(t, dir, db, "materialize")
	if !strings.Contains(out, "Built 7 summaries") {
		t.Errorf("expected 'Built 7 summaries', got: %s", out)
	}

	out = run(t, dir, db, "materialize")
	if !strings.Contains(out, "already materialized") {
		t.Errorf("expected second run to be a no-op, got: %s", out)
	}
}

func TestMaterialize_Force(t *testing.T) {
	dir, db := testEnv(t)
	run(t, dir, db, "materialize")

	out := run(t, dir, db, "materialize", "--force")
	if !strings.Contains(out, "Rebuilt 7 summaries") {
		t.Errorf("expected 'Rebuilt 7 summaries', got: %s", out)
	}
	if !strings.Contains(out, store.RelSalary) {
		t.Errorf("expected status table to list %s, got: %s", store.RelSalary, out)
	}
}

func TestMaterialize_MissingDataDir(t *testing.T) {
	_, db := testEnv(t)

	_, err := execute(t, withGlobals(filepath.Join(t.TempDir(), "nope"), db, "materialize")...)
	if err == nil {
		t.Fatal("expected error for missing source files")
	}
}

func TestMaterialize_MissingDBDir(t *testing.T) {
	dir, _ := testEnv(t)

	_, err := execute(t, withGlobals(dir, filepath.Join(t.TempDir(), "missing", "x.db"), "materialize")...)
	if !errors.Is(err, store.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestTopSkills(t *testing.T) {
	dir, db := testEnv(t)

	tests := []struct {
		name string
		args []string
		want []string
		not  []string
	}{
		{
			name: "all roles",
			args: []string{"top-skills"},
			want: []string{"sql", "66.7%", "aws", "33.3%"},
		},
		{
			name: "one role",
			args: []string{"top-skills", "--role", "Data Analyst"},
			want: []string{"sql", "100.0%"},
			not:  []string{"aws"},
		},
		{
			name: "skill type",
			args: []string{"top-skills", "--type", "cloud"},
			want: []string{"aws", "100.0%"},
			not:  []string{"sql"},
		},
		{
			name: "no match",
			args: []string{"top-skills", "--role", "Astronaut"},
			want: []string{"No skills match"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, dir, db, tt.args...)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected output to contain %q, got: %s", w, out)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(out, n) {
					t.Errorf("expected output not to contain %q, got: %s", n, out)
				}
			}
		})
	}
}

func TestTopSkills_InvalidTop(t *testing.T) {
	dir, db := testEnv(t)

	if _, err := execute(t, withGlobals(dir, db, "top-skills", "--top", "0")...); err == nil {
		t.Error("expected error for --top 0")
	}
}

func TestSalary(t *testing.T) {
	dir, db := testEnv(t)

	out := run(t, dir, db, "salary", "--month", "5")
	if !strings.Contains(out, "Data Analyst") || !strings.Contains(out, "May") {
		t.Errorf("expected May row for Data Analyst, got: %s", out)
	}
	if !strings.Contains(out, "$110,000") {
		t.Errorf("expected average of $110,000, got: %s", out)
	}

	out = run(t, dir, db, "salary")
	if !strings.Contains(out, "all") {
		t.Errorf("expected combined months, got: %s", out)
	}

	out = run(t, dir, db, "salary", "--month", "1")
	if !strings.Contains(out, "No salary data") {
		t.Errorf("expected empty message for January, got: %s", out)
	}
}

func TestSalary_InvalidMonth(t *testing.T) {
	dir, db := testEnv(t)

	if _, err := execute(t, withGlobals(dir, db, "salary", "--month", "13")...); err == nil {
		t.Error("expected error for --month 13")
	}
}

func TestDemand(t *testing.T) {
	dir, db := testEnv(t)

	out := run(t, dir, db, "demand", "--role", "Data Analyst")
	if !strings.Contains(out, "sql") {
		t.Errorf("expected sql column, got: %s", out)
	}
	if !strings.Contains(out, "2023-05-02") || !strings.Contains(out, "2023-05-20") {
		t.Errorf("expected both posting days, got: %s", out)
	}

	out = run(t, dir, db, "demand", "--schedule", "Part-time")
	if !strings.Contains(out, "No postings match") {
		t.Errorf("expected empty message, got: %s", out)
	}
}

func TestCountries(t *testing.T) {
	dir, db := testEnv(t)

	out := run(t, dir, db, "countries")
	if !strings.Contains(out, "Germany") || !strings.Contains(out, "France") {
		t.Errorf("expected Germany and France, got: %s", out)
	}
	if strings.Contains(out, "Remote") {
		t.Errorf("Remote is not a country, got: %s", out)
	}

	out = run(t, dir, db, "countries", "--limit", "1")
	if strings.Contains(out, "Germany") && strings.Contains(out, "France") {
		t.Errorf("expected a single country with --limit 1, got: %s", out)
	}
}

func TestIntro(t *testing.T) {
	dir, db := testEnv(t)

	out := run(t, dir, db, "intro")
	for _, want := range []string{"Total jobs: 3", "$110,000", "Data Analyst", "Languages", "Germany"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected intro to contain %q, got: %s", want, out)
		}
	}
}

func TestStatus(t *testing.T) {
	dir, db := testEnv(t)

	out := run(t, dir, db, "status")
	if !strings.Contains(out, "7 of 7 summaries missing") {
		t.Errorf("expected everything missing on a fresh database, got: %s", out)
	}
	if !strings.Contains(out, "stopped") {
		t.Errorf("expected watcher to be reported stopped, got: %s", out)
	}

	run(t, dir, db, "materialize")
	out = run(t, dir, db, "status")
	if strings.Contains(out, "missing") {
		t.Errorf("expected everything ready, got: %s", out)
	}
	if !strings.Contains(out, "ready") {
		t.Errorf("expected ready relations, got: %s", out)
	}
}

func TestDrop(t *testing.T) {
	dir, db := testEnv(t)
	run(t, dir, db, "materialize")

	out := run(t, dir, db, "drop", store.RelSalary)
	if !strings.Contains(out, "Dropped 1 summaries") {
		t.Errorf("unexpected drop output: %s", out)
	}

	out = run(t, dir, db, "status")
	if !strings.Contains(out, "1 of 7 summaries missing") {
		t.Errorf("expected salary summary missing, got: %s", out)
	}

	// queries rebuild what was dropped
	run(t, dir, db, "salary")
	out = run(t, dir, db, "status")
	if strings.Contains(out, "summaries missing") {
		t.Errorf("expected salary summary rebuilt, got: %s", out)
	}
}

func TestDrop_UnknownRelation(t *testing.T) {
	dir, db := testEnv(t)

	_, err := execute(t, withGlobals(dir, db, "drop", "bogus")...)
	if !errors.Is(err, store.ErrUnknownRelation) {
		t.Errorf("expected ErrUnknownRelation, got %v", err)
	}
}

func TestMetricsFile(t *testing.T) {
	dir, db := testEnv(t)
	path := filepath.Join(t.TempDir(), "jobskills.prom")

	run(t, dir, db, "materialize", "--metrics-file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), "jobskills_materialize_runs_total") {
		t.Errorf("expected run counter in metrics file, got: %s", data)
	}
}
