//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

var Default = Build

var Aliases = map[string]any{
	"b":    Build,
	"t":    Test.Default,
	"f":    Test.Fuzz,
	"l":    Lint.Default,
	"c":    Check,
	"cmp":  Bench.Compare,
	"cmpf": Bench.Fast,
}

type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

const binary = "ragged"

// smokeInput is a small ragged document fed to the built binary by CI:Smoke.
const smokeInput = `[[1, 2, 3], [], [4, 5]]`

// Build compiles bin/ragged, skipping the build when no source changed.
func Build() error {
	out := filepath.Join("bin", binary)
	rebuild, err := target.Dir(out, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Printf("%s is up to date\n", out)
		return nil
	}
	fmt.Printf("Building %s...\n", binary)
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", out, "./cmd/"+binary)
}

// Check formats, lints and tests.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes bin/, bench/ and coverage output.
func Clean() error {
	for _, path := range []string{"bin", "bench", "coverage.out"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install runs go install for cmd/ragged.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/"+binary)
}

// Default runs the race-enabled suite through gotestsum.
func (Test) Default() error {
	nCores := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	return sh.RunV("go",
		"tool", "gotestsum",
		"-f", "pkgname-and-test-fails",
		"--",
		"-race",
		"-p", nCores,
		"./...",
		"-coverprofile=coverage.out",
	)
}

// Fuzz runs the decoder and atomic-write fuzz targets for FUZZ_TIME each.
func (Test) Fuzz() error {
	fuzzTime := cmp.Or(os.Getenv("FUZZ_TIME"), "30s")
	targets := []struct{ pkg, name string }{
		{"./pkg/codec", "FuzzDecode"},
		{"./pkg/fsutil", "FuzzWriteAtomic"},
	}
	for _, f := range targets {
		fmt.Printf("Fuzzing %s %s for %s...\n", f.pkg, f.name, fuzzTime)
		if err := sh.RunV("go", "test", "-run=^$", "-fuzz=^"+f.name+"$", "-fuzztime="+fuzzTime, f.pkg); err != nil {
			return fmt.Errorf("fuzz %s: %w", f.name, err)
		}
	}
	return nil
}

func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// Gate is the CI entry point.
func (CI) Gate() error {
	st.SerialDeps(Lint.Default, Test.Default, CI.Smoke)
	fmt.Println("CI gate passed")
	return nil
}

// Smoke builds the binary and runs convert, form and reduce over smokeInput.
func (CI) Smoke() error {
	st.Deps(Build)
	dir, err := os.MkdirTemp("", "ragged-smoke")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.json")
	if err := os.WriteFile(input, []byte(smokeInput), 0o600); err != nil {
		return fmt.Errorf("write smoke input: %w", err)
	}
	bin := filepath.Join("bin", binary)
	for _, args := range [][]string{
		{"convert", input},
		{"form", input},
		{"reduce", "--op", "sum", "--axis=-1", input},
		{"reduce", "--op", "max", "--axis", "none", input},
	} {
		if err := sh.RunV(bin, args...); err != nil {
			return fmt.Errorf("%s %s: %w", binary, strings.Join(args, " "), err)
		}
	}
	return nil
}

// Default runs every benchmark once.
func (Bench) Default() error {
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", "./...")
}

// Compare runs the codec and reduce benchmarks BENCH_RUNS times and
// summarizes them with benchstat.
func (Bench) Compare() error {
	if err := checkBenchstat(); err != nil {
		return err
	}
	return runBenchstat(cmp.Or(os.Getenv("BENCH_RUNS"), "6"))
}

// Fast is Compare with a single run.
func (Bench) Fast() error {
	if err := checkBenchstat(); err != nil {
		return err
	}
	return runBenchstat("1")
}

// Helpers

func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags sets the version, commit and date reported by ragged version.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}

// runBenchstat writes benchmark output to bench/latest.txt and prints the
// benchstat summary.
func runBenchstat(count string) error {
	if err := os.MkdirAll("bench", 0o755); err != nil {
		return fmt.Errorf("create bench directory: %w", err)
	}
	out, err := sh.Output("go", "test", "-run=^$", "-bench=.", "-benchmem",
		"-count="+count, "./pkg/codec", "./pkg/reduce")
	if err != nil {
		return fmt.Errorf("run benchmarks: %w", err)
	}
	latest := filepath.Join("bench", "latest.txt")
	if err := os.WriteFile(latest, []byte(out+"\n"), 0o644); err != nil { //nolint:gosec // benchmark output is not sensitive
		return fmt.Errorf("write %s: %w", latest, err)
	}
	return sh.RunV("benchstat", latest)
}

func checkBenchstat() error {
	if err := exec.Command("benchstat", "-h").Run(); err != nil { //nolint:gosec // args are constant
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return errors.New("benchstat not found; install with: go install golang.org/x/perf/cmd/benchstat@latest")
		}
	}
	return nil
}
