// Package calc parses calculator flags and runs the evaluation loop.
package calc

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/internal/history"
)

// Config holds calculator command configuration.
type Config struct {
	// Prec is the precision of calculations in bits.
	Prec uint `env:"CALC_PREC" envDefault:"64"`
	// Format is a fmt verb for results. Empty uses calc.Format.
	Format string `env:"CALC_FORMAT"`
	// Lang is a BCP 47 language tag for locale-aware results.
	Lang string `env:"CALC_LANG"`
	// History is the path of a SQLite database recording evaluations.
	History string `env:"CALC_HISTORY"`
	// Prompt is printed before each line read from a terminal.
	Prompt string `env:"CALC_PROMPT" envDefault:"expression: "`

	// In is an input file with one expression per line; "-" is stdin.
	In string
	// Recent is the number of history entries to print instead of
	// evaluating anything.
	Recent int
	// Echo prints each normalized expression before its result.
	Echo bool
	// Exprs are expressions given as arguments.
	Exprs []string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	fs.UintVar(&cfg.Prec, "p", cfg.Prec, "precision of calculations in bits")
	fs.StringVar(&cfg.Format, "fmt", cfg.Format, "result formatting verb, e.g. %g (default exact)")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "language tag for locale-formatted results, rounded to float64 precision")
	fs.StringVar(&cfg.History, "history", cfg.History, "SQLite database recording evaluations")
	fs.StringVar(&cfg.Prompt, "prompt", cfg.Prompt, "prompt for interactive input")
	fs.StringVar(&cfg.In, "in", "", "input file (default stdin if no args given)")
	fs.IntVar(&cfg.Recent, "recent", 0, "print the last `n` history entries and exit")
	fs.BoolVar(&cfg.Echo, "echo", false, "print normalized expressions")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Exprs = fs.Args()
	if cfg.Prec == 0 {
		return Config{}, errors.New("precision must be positive")
	}
	if cfg.Lang != "" {
		if _, err := language.Parse(cfg.Lang); err != nil {
			return Config{}, fmt.Errorf("parse language %q: %w", cfg.Lang, err)
		}
	}
	if cfg.Recent > 0 && cfg.History == "" {
		return Config{}, errors.New("-recent requires a history database")
	}
	return cfg, nil
}

// session evaluates expressions one at a time and reports the results.
type session struct {
	calc   *calc.Context
	store  *history.Store
	out    io.Writer
	format func(*big.Float) string
	echo   bool
}

// formatter selects how results are written.
func formatter(cfg Config) func(*big.Float) string {
	switch {
	case cfg.Format != "":
		verb := cfg.Format
		return func(r *big.Float) string {
			return fmt.Sprintf(verb, r)
		}
	case cfg.Lang != "":
		p := message.NewPrinter(language.MustParse(cfg.Lang))
		return func(r *big.Float) string {
			// Locale formatting is for display; the exact value is still
			// available through the default format.
			f, _ := r.Float64()
			return p.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(15)))
		}
	default:
		return calc.Format
	}
}

func (s *session) eval(ctx context.Context, src string) {
	norm := calc.Normalize(src)
	entry := history.Entry{Expr: src, Normalized: norm, At: time.Now()}
	if s.echo {
		fmt.Fprintf(s.out, "%s : ", norm)
	}
	r, err := s.calc.Eval(calc.Tokenize(norm))
	if err != nil {
		entry.Err = err.Error()
		fmt.Fprintln(s.out, err)
	} else {
		entry.Result = s.format(r)
		fmt.Fprintln(s.out, entry.Result)
	}
	if s.store == nil {
		return
	}
	if err := s.store.Record(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("record history: %v", err)
	}
}

// Run evaluates expressions from cfg.Exprs, cfg.In, or stdin and writes
// results to stdout. Evaluation errors are written as results; Run only
// returns errors from its inputs and storage.
func Run(ctx context.Context, cfg Config, stdin io.Reader, stdout io.Writer) error {
	s := session{
		calc:   calc.NewContext(calc.Prec(cfg.Prec)),
		out:    stdout,
		format: formatter(cfg),
		echo:   cfg.Echo,
	}
	if cfg.History != "" {
		store, err := history.Open(cfg.History)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		s.store = store
	}
	if cfg.Recent > 0 {
		return printRecent(ctx, s.store, cfg.Recent, stdout)
	}

	var in io.Reader
	prompt := ""
	switch {
	case cfg.In != "" && cfg.In != "-":
		f, err := os.Open(cfg.In)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	case cfg.In == "-", len(cfg.Exprs) == 0:
		in = stdin
		if isTerminal(stdin) {
			prompt = cfg.Prompt
		}
	}
	if in != nil {
		if err := s.lines(ctx, in, prompt); err != nil {
			return err
		}
	}
	for _, src := range cfg.Exprs {
		if err := ctx.Err(); err != nil {
			return nil
		}
		s.eval(ctx, src)
	}
	return nil
}

// lines evaluates each non-blank line of in until EOF or ctx is done.
func (s *session) lines(ctx context.Context, in io.Reader, prompt string) error {
	type line struct {
		text string
		err  error
		eof  bool
	}
	ch := make(chan line)
	next := make(chan struct{})
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for range next {
			l := line{eof: !sc.Scan()}
			if l.eof {
				l.err = sc.Err()
			} else {
				l.text = sc.Text()
			}
			select {
			case ch <- l:
			case <-ctx.Done():
				return
			}
			if l.eof {
				return
			}
		}
	}()
	defer close(next)
	for {
		if prompt != "" {
			fmt.Fprint(s.out, prompt)
		}
		select {
		case <-ctx.Done():
			return nil
		case next <- struct{}{}:
		}
		var l line
		select {
		case <-ctx.Done():
			return nil
		case l = <-ch:
		}
		if l.eof {
			if prompt != "" {
				fmt.Fprintln(s.out)
			}
			return l.err
		}
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		s.eval(ctx, l.text)
	}
}

func printRecent(ctx context.Context, store *history.Store, n int, w io.Writer) error {
	entries, err := store.Recent(ctx, n)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	for _, e := range entries {
		outcome := e.Result
		if e.Err != "" {
			outcome = "error: " + e.Err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.At.Local().Format(time.DateTime), e.Expr, outcome)
	}
	return nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
