// Package main provides the adtape CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/born-ml/adtape/internal/autodiff"
	"github.com/born-ml/adtape/internal/config"
	"github.com/born-ml/adtape/internal/parallel"
	"github.com/born-ml/adtape/internal/serialization"
	"github.com/born-ml/adtape/internal/store"
	"github.com/born-ml/adtape/internal/tape"
)

const version = "v0.1.0-dev"

var log = commonlog.GetLogger("adtape.cli")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "adtape: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "adtape - tape-based automatic differentiation")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Usage: adtape [-config file] [-v n] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version                     Show version")
	fmt.Fprintln(w, "  inspect <file>              Describe a tape file")
	fmt.Fprintln(w, "  verify <file>...            Check tape files")
	fmt.Fprintln(w, "  eval <file> <x0,x1,...>     Print values and Jacobian at a point")
	fmt.Fprintln(w, "  store put <name> <file>     Copy a tape file into the store")
	fmt.Fprintln(w, "  store get <name> <file>     Write a stored tape to a file")
	fmt.Fprintln(w, "  store list                  List stored tapes")
	fmt.Fprintln(w, "  store rm <name>             Delete a stored tape")
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("adtape", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", "", "Path to adtape.toml")
	verbosity := fs.Int("v", 0, "Log verbosity (0 = warnings only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	commonlog.Configure(*verbosity, nil)

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(out)
		return nil
	}
	switch rest[0] {
	case "version":
		fmt.Fprintf(out, "adtape %s\n", version)
		return nil
	case "inspect":
		if len(rest) != 2 {
			return errors.New("inspect: want one file")
		}
		return inspect(out, rest[1])
	case "verify":
		if len(rest) < 2 {
			return errors.New("verify: want at least one file")
		}
		return verify(out, rest[1:], parallel.FromConfig(cfg.Parallel))
	case "eval":
		if len(rest) != 3 {
			return errors.New("eval: want a file and a point")
		}
		return eval(out, rest[1], rest[2], cfg.Compare)
	case "store":
		return storeCmd(out, rest[1:], cfg.Store.Path)
	case "help":
		usage(out)
		return nil
	}
	return fmt.Errorf("unknown command %q", rest[0])
}

func inspect(out io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	h, err := serialization.ReadHeader(file)
	_ = file.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	t, err := serialization.ReadFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "file:        %s\n", path)
	fmt.Fprintf(out, "version:     %d\n", h.Version)
	fmt.Fprintf(out, "checksum:    %s\n", h.Checksum)
	fmt.Fprintf(out, "body:        %d bytes\n", h.BodySize)
	fmt.Fprintf(out, "rows:        %d\n", t.NumVar)
	fmt.Fprintf(out, "operators:   %d\n", t.NumOps())
	fmt.Fprintf(out, "domain:      %d\n", len(t.Independent))
	fmt.Fprintf(out, "range:       %d\n", len(t.Dependent))
	fmt.Fprintf(out, "parameters:  %d\n", len(t.Par))
	fmt.Fprintf(out, "vectors:     %d\n", len(t.Vectors()))
	fmt.Fprintf(out, "memory:      %d bytes\n", t.Memory())

	counts := make(map[tape.OpCode]int)
	for _, op := range t.Ops {
		counts[op.Code]++
	}
	fmt.Fprintln(out, "opcodes:")
	for code := tape.Inv; code.Valid(); code++ {
		if n := counts[code]; n > 0 {
			fmt.Fprintf(out, "  %-6s %d\n", code, n)
		}
	}
	return nil
}

func verify(out io.Writer, paths []string, cfg parallel.Config) error {
	errs := make([]error, len(paths))
	parallel.For(len(paths), func(i int) {
		t, err := serialization.ReadFile(paths[i])
		if err == nil {
			_, err = autodiff.New(t)
		}
		errs[i] = err
	}, cfg)

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", paths[i], err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", paths[i])
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tapes failed verification", failed, len(paths))
	}
	return nil
}

func parsePoint(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	x := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("point element %d: %w", i, err)
		}
		x[i] = v
	}
	return x, nil
}

func eval(out io.Writer, path, point string, cmp config.Compare) error {
	t, err := serialization.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := autodiff.New(t)
	if err != nil {
		return err
	}
	f.Configure(cmp)
	x, err := parsePoint(point)
	if err != nil {
		return err
	}

	y, err := f.Forward(0, x)
	if err != nil {
		return err
	}
	if n := f.CompareChange(); n > 0 {
		log.Warningf("%d recorded comparisons changed at this point", n)
	}
	jac, err := f.Jacobian(x)
	if err != nil {
		return err
	}

	n := f.Domain()
	for i, v := range y {
		fmt.Fprintf(out, "y[%d] = %.17g\n", i, v)
		row := make([]string, n)
		for j := 0; j < n; j++ {
			row[j] = strconv.FormatFloat(jac[i*n+j], 'g', 17, 64)
		}
		fmt.Fprintf(out, "  dy[%d]/dx = [%s]\n", i, strings.Join(row, ", "))
	}
	return nil
}

func storeCmd(out io.Writer, args []string, dbPath string) error {
	if len(args) == 0 {
		return errors.New("store: missing subcommand")
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	switch args[0] {
	case "put":
		if len(args) != 3 {
			return errors.New("store put: want a name and a file")
		}
		t, err := serialization.ReadFile(args[2])
		if err != nil {
			return err
		}
		return s.Put(ctx, args[1], t)
	case "get":
		if len(args) != 3 {
			return errors.New("store get: want a name and a file")
		}
		t, err := s.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return serialization.WriteFile(args[2], t)
	case "list":
		entries, err := s.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%-24s rows=%-8d ops=%-8d %s %s\n",
				e.Name, e.Rows, e.Ops, e.Checksum[:12], e.Created.Format("2006-01-02 15:04:05"))
		}
		return nil
	case "rm":
		if len(args) != 2 {
			return errors.New("store rm: want a name")
		}
		return s.Delete(ctx, args[1])
	}
	return fmt.Errorf("store: unknown subcommand %q", args[0])
}
