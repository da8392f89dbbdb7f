package calc

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/internal/history"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"1+2", "3*4"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Prec != 64 {
		t.Fatalf("Prec = %d, want 64", cfg.Prec)
	}
	if cfg.Prompt != "expression: " {
		t.Fatalf("Prompt = %q, want default", cfg.Prompt)
	}
	if len(cfg.Exprs) != 2 || cfg.Exprs[0] != "1+2" || cfg.Exprs[1] != "3*4" {
		t.Fatalf("Exprs = %q, want [1+2 3*4]", cfg.Exprs)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("CALC_PREC", "128")
	t.Setenv("CALC_LANG", "de")
	t.Setenv("CALC_HISTORY", "/tmp/env.sqlite")

	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-history", "/tmp/flag.sqlite", "-echo"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Prec != 128 {
		t.Fatalf("Prec = %d, want 128 from env", cfg.Prec)
	}
	if cfg.Lang != "de" {
		t.Fatalf("Lang = %q, want de from env", cfg.Lang)
	}
	if cfg.History != "/tmp/flag.sqlite" {
		t.Fatalf("History = %q, want flag override", cfg.History)
	}
	if !cfg.Echo {
		t.Fatal("Echo = false, want true")
	}
}

func TestParseConfigRejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"zero-prec", nil, []string{"-p", "0"}},
		{"bad-env-prec", map[string]string{"CALC_PREC": "lots"}, nil},
		{"bad-lang", nil, []string{"-lang", "not a language"}},
		{"recent-without-history", nil, []string{"-recent", "3"}},
		{"unknown-flag", nil, []string{"-nope"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			fs := flag.NewFlagSet("calc", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			if _, err := ParseConfig(fs, c.args); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseConfigLangUsage(t *testing.T) {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if u := fs.Lookup("lang").Usage; !strings.Contains(u, "float64") {
		t.Fatalf("-lang usage %q does not mention float64 rounding", u)
	}
}

func run(t *testing.T, cfg Config, stdin string) string {
	t.Helper()

	if cfg.Prec == 0 {
		cfg.Prec = 64
	}
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, strings.NewReader(stdin), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestRunArgs(t *testing.T) {
	t.Parallel()

	got := run(t, Config{Exprs: []string{"2+3*4", "2^3^2", "7/2", "XII+III", "(1+2"}}, "")
	want := "14\n512\n3.5\n15\n5: open bracket ( with no close bracket\n"
	if got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunStdin(t *testing.T) {
	t.Parallel()

	got := run(t, Config{Prompt: "> "}, "1+2\n\n  \n2**10\n1+\n")
	// A reader that is not a terminal gets no prompt.
	want := "3\n1024\n2: operator \"+\" needs 2 operands, have 1\n"
	if got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunInputFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exprs.txt")
	if err := os.WriteFile(path, []byte("(2+3)*4\nX-I\n"), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	got := run(t, Config{In: path, Exprs: []string{"1"}}, "ignored\n")
	if got != "20\n9\n1\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRunMissingInputFile(t *testing.T) {
	t.Parallel()

	cfg := Config{Prec: 64, In: filepath.Join(t.TempDir(), "missing.txt")}
	if err := Run(context.Background(), cfg, strings.NewReader(""), io.Discard); err == nil {
		t.Fatal("expected missing input error")
	}
}

func TestRunEchoAndFormat(t *testing.T) {
	t.Parallel()

	got := run(t, Config{Echo: true, Format: "%.3f", Exprs: []string{"II**III/3"}}, "")
	if got != "2^3/3 : 2.667\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRunLang(t *testing.T) {
	t.Parallel()

	cases := []struct {
		lang, want string
	}{
		{"en", "1,234,567\n"},
		{"de", "1.234.567\n"},
	}
	for _, c := range cases {
		got := run(t, Config{Lang: c.lang, Exprs: []string{"1234567"}}, "")
		if got != c.want {
			t.Errorf("lang %s: output = %q, want %q", c.lang, got, c.want)
		}
	}
}

func TestRunDivideByZero(t *testing.T) {
	t.Parallel()

	got := run(t, Config{Exprs: []string{"1/0", "0^(0-1)", "3^100"}}, "")
	want := "0 outside domain of / (argument 2)\n" +
		"0 outside domain of ^ (argument 1)\n" +
		"515377520732011331036461129765621272702107522001\n"
	if got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunHistory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.sqlite")
	run(t, Config{History: path, Exprs: []string{"XII+III", "1%2", "2^10"}}, "")

	got := run(t, Config{History: path, Recent: 2}, "")
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("recent lines = %q, want 2", lines)
	}
	if !strings.HasSuffix(lines[0], "\t1%2\terror: 2: unknown operator \"%\"") {
		t.Fatalf("recent[0] = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "\t2^10\t1024") {
		t.Fatalf("recent[1] = %q", lines[1])
	}
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	if err := Run(ctx, Config{Prec: 64}, pr, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want none", out.String())
	}
}

func TestEvalCanceledHistoryQuiet(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	s := session{
		calc:   calc.NewContext(),
		store:  store,
		out:    &out,
		format: calc.Format,
	}
	s.eval(ctx, "1+2")
	if out.String() != "3\n" {
		t.Fatalf("output = %q, want %q", out.String(), "3\n")
	}
	if logs.Len() != 0 {
		t.Fatalf("canceled history write logged %q", logs.String())
	}
}
