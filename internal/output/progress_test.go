package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestProgressBar_Step(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(4, "starting")
	p.SetWriter(&buf)

	p.Step("job_title_skill_count")
	p.Step("salary_summary")

	if p.Current() != 2 {
		t.Errorf("Current() = %d, want 2", p.Current())
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want one per step:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], " 2/4 salary_summary") {
		t.Errorf("line = %q, want step count and description", lines[1])
	}
}

func TestProgressBar_OverLimit(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(1, "")
	p.SetWriter(&buf)

	p.Step("a")
	p.Step("b")
	if p.Current() != 1 {
		t.Errorf("Current() = %d, want 1", p.Current())
	}
	if !strings.Contains(buf.String(), "[=============================>]") {
		t.Errorf("full bar not rendered:\n%s", buf.String())
	}
}

func TestProgressBar_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(0, "")
	p.SetWriter(&buf)
	p.Step("nothing")
	p.Finish()

	if !strings.Contains(buf.String(), " 0/0 nothing") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestProgressBar_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(100, "")
	p.SetWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Step("x")
		}()
	}
	wg.Wait()

	if p.Current() != 100 {
		t.Errorf("Current() = %d, want 100", p.Current())
	}
}

func TestSpinner_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Loading dataset")
	s.SetWriter(&buf)

	s.Start()
	s.Start() // no-op
	s.StopWithMessage("done")
	s.Stop() // no-op

	want := "Loading dataset...\ndone\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
