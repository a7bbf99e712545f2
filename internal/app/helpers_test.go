package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	testJobsCSV = `job_id,job_title,job_title_short,job_posted_date,job_country,job_schedule_type,salary_year_avg
1,Data Analyst I,Data Analyst,2023-05-02 10:00:00,Germany,Full-time,100000
2,Data Analyst II,Data Analyst,2023-05-20 09:30:00,Remote,Full-time,120000
3,Senior Data Engineer,Data Engineer,2023-06-01 08:00:00,France,Contractor,
`
	testSkillsCSV = `skill_id,skills,type
10,sql,programming
11,aws,cloud
`
	testLinksCSV = `job_id,skill_id
1,10
2,10
3,11
3,99
`
)

// testEnv points HOME and the config dir at a temp dir and writes the
// source CSV files. It returns the data dir and a database path.
func testEnv(t *testing.T) (dir, db string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	dir = filepath.Join(home, "data")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}
	files := map[string]string{
		"job_postings_fact.csv": testJobsCSV,
		"skills_dim.csv":        testSkillsCSV,
		"skills_job_dim.csv":    testLinksCSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir, filepath.Join(home, "jobskills.db")
}

// resetFlags restores every flag of cmd and its children to its default so
// package-level flag variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns what it wrote to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	defer RootCmd.SetOut(nil)
	defer RootCmd.SetErr(nil)

	if args == nil {
		args = []string{}
	}
	RootCmd.SetArgs(args)
	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// run executes a subcommand against the test dataset with quiet logging and
// no cache.
func run(t *testing.T, dir, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, withGlobals(dir, db, args...)...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

func withGlobals(dir, db string, args ...string) []string {
	return append(args, "--data-dir", dir, "--db", db, "--cache", "none", "--log-level", "error")
}
