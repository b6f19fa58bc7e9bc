package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqtower/pkg/cache"
	errs "github.com/matzehuels/seqtower/pkg/errors"
	pkgio "github.com/matzehuels/seqtower/pkg/io"
	"github.com/matzehuels/seqtower/pkg/store"
)

const snpSite = "H\tVN:Z:1.0\tORI:Z:ref;alt\n" +
	"S\t1\tATCG\tORI:Z:ref;alt\n" +
	"S\t2\tA\tORI:Z:ref\n" +
	"S\t3\tC\tORI:Z:alt\n" +
	"S\t4\tGCTA\tORI:Z:ref;alt\n" +
	"L\t1\t+\t2\t+\t0M\n" +
	"L\t1\t+\t3\t+\t0M\n" +
	"L\t2\t+\t4\t+\t0M\n" +
	"L\t3\t+\t4\t+\t0M\n"

// execute runs the root command with args and empty config and cache
// locations.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if os.Getenv("XDG_CACHE_HOME") == "" {
		t.Setenv("XDG_CACHE_HOME", t.TempDir())
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.gfa", snpSite)

	if err := execute(t, "parse", path); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !store.HasCache(store.PathFor(path, "")) {
		t.Error("parse should leave a committed store")
	}
	if err := execute(t, "parse", path, "--validate"); err != nil {
		t.Fatalf("parse from cache: %v", err)
	}
}

func TestParseCommandNoCache(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.gfa", snpSite)

	if err := execute(t, "parse", path, "--no-cache"); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := os.Stat(store.PathFor(path, "")); !os.IsNotExist(err) {
		t.Error("--no-cache should not create a store")
	}
}

func TestParseCommandMalformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.gfa", "S\t1\n")
	err := execute(t, "parse", path)
	if !errs.Is(err, errs.ErrCodeMalformedInput) {
		t.Errorf("parse error = %v, want MALFORMED_INPUT", err)
	}
}

func TestSubgraphJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "site.gfa", snpSite)
	out := filepath.Join(dir, "view.json")

	if err := execute(t, "subgraph", path, "--center", "1", "--radius", "2", "-o", out); err != nil {
		t.Fatalf("subgraph: %v", err)
	}
	v, err := pkgio.ImportJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if v.Center != 1 || v.Radius != 2 || len(v.Bubbles()) != 1 {
		t.Errorf("view = center %d radius %d bubbles %d", v.Center, v.Radius, len(v.Bubbles()))
	}
}

func TestSubgraphConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "site.gfa", snpSite)
	cfg := writeFile(t, dir, "config.toml", "radius = 1\ncollapse_snps = false\n")
	out := filepath.Join(dir, "view.json")

	if err := execute(t, "--config", cfg, "subgraph", path, "--center", "1", "-o", out); err != nil {
		t.Fatalf("subgraph: %v", err)
	}
	v, err := pkgio.ImportJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if v.Radius != 1 || v.NodeCount() != 3 || len(v.Bubbles()) != 0 {
		t.Errorf("view = radius %d nodes %d bubbles %d, want config defaults", v.Radius, v.NodeCount(), len(v.Bubbles()))
	}

	// Flags win over the config file.
	if err := execute(t, "--config", cfg, "subgraph", path, "--center", "1", "--radius", "2", "--collapse", "-o", out); err != nil {
		t.Fatalf("subgraph: %v", err)
	}
	if v, _ = pkgio.ImportJSON(out); v.Radius != 2 || len(v.Bubbles()) != 1 {
		t.Errorf("flags should override config, got radius %d bubbles %d", v.Radius, len(v.Bubbles()))
	}
}

func TestParseConfigValidate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "loop.gfa", "S\t1\tA\nS\t2\tC\nL\t1\t+\t2\t+\t0M\nL\t2\t+\t1\t+\t0M\n")
	cfg := writeFile(t, dir, "config.toml", "validate = true\n")

	if err := execute(t, "parse", path, "--no-cache"); err != nil {
		t.Fatalf("parse without validation: %v", err)
	}
	err := execute(t, "--config", cfg, "parse", path, "--no-cache")
	if !errs.Is(err, errs.ErrCodeCycle) {
		t.Errorf("parse with validate = true: error = %v, want CYCLE_DETECTED", err)
	}
	if err := execute(t, "--config", cfg, "parse", path, "--no-cache", "--validate=false"); err != nil {
		t.Errorf("--validate=false should override the config: %v", err)
	}
}

func TestSubgraphDOTAndRender(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "site.gfa", snpSite)

	dot := filepath.Join(dir, "view.dot")
	if err := execute(t, "subgraph", path, "--center", "1", "--radius", "2", "-f", "dot", "-o", dot); err != nil {
		t.Fatalf("subgraph: %v", err)
	}
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "digraph G") || !strings.Contains(string(data), "snp1") {
		t.Errorf("DOT output:\n%s", data)
	}

	view := filepath.Join(dir, "view.json")
	if err := execute(t, "subgraph", path, "--center", "1", "--radius", "2", "-o", view); err != nil {
		t.Fatalf("subgraph: %v", err)
	}
	if err := execute(t, "render", view, "-f", "dot", "--detailed"); err != nil {
		t.Fatalf("render: %v", err)
	}
	rendered, err := os.ReadFile(filepath.Join(dir, "view.dot"))
	if err != nil {
		t.Fatalf("render should default to <input>.dot: %v", err)
	}
	if !strings.Contains(string(rendered), "genomes: ref, alt") {
		t.Errorf("detailed render missing genome names:\n%s", rendered)
	}
}

func TestSubgraphErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.gfa", snpSite)
	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"bad format", []string{"subgraph", path, "--center", "1", "-f", "png"}, errs.ErrCodeInvalidInput},
		{"unknown center", []string{"subgraph", path, "--center", "9"}, errs.ErrCodeNotFound},
		{"negative radius", []string{"subgraph", path, "--center", "1", "--radius", "-1"}, errs.ErrCodeInvalidInput},
		{"render format", []string{"render", "view.json", "-f", "json"}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	if err := execute(t, "subgraph", path); err == nil {
		t.Error("subgraph without --center should fail")
	}
}

func TestLocateCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.gfa", snpSite)

	if err := execute(t, "locate", path, "alt", "5"); err != nil {
		t.Fatalf("locate: %v", err)
	}
	if err := execute(t, "locate", path, "nope", "1"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("unknown genome error = %v", err)
	}
	if err := execute(t, "locate", path, "ref", "x"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("bad position error = %v", err)
	}
	if err := execute(t, "locate", path, "ref", "10"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("position past the end error = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.gfa", snpSite)
	if err := execute(t, "parse", path); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "cache", "path", path); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if err := execute(t, "cache", "clear", path); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if store.HasCache(store.PathFor(path, "")) {
		t.Error("cache clear should remove the store")
	}
	if err := execute(t, "cache", "clear", path); err != nil {
		t.Errorf("clearing a missing store: %v", err)
	}
	if err := execute(t, "cache", "path", ""); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("empty path error = %v", err)
	}
}

func TestRenderCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	rc := newRenderCache(ctx, false)
	fc, ok := rc.(*cache.FileCache)
	if !ok {
		t.Fatalf("newRenderCache() = %T, want *cache.FileCache", rc)
	}
	dir, err := renderCacheDir()
	if err != nil || fc.Dir() != dir {
		t.Fatalf("render cache dir = %s, want %s (%v)", fc.Dir(), dir, err)
	}
	if _, ok := newRenderCache(ctx, true).(*cache.NullCache); !ok {
		t.Error("disabled render cache should be a NullCache")
	}

	// A cached entry is served without running graphviz.
	const dot = "digraph G {\n}\n"
	if err := fc.Set(ctx, cache.Key(formatSVG, []byte(dot)), []byte("<svg>cached</svg>"), cache.DefaultTTL); err != nil {
		t.Fatal(err)
	}
	svg, err := renderSVG(ctx, dot, fc)
	if err != nil || string(svg) != "<svg>cached</svg>" {
		t.Fatalf("renderSVG() = %q, %v; want cached entry", svg, err)
	}

	if err := execute(t, "cache", "path"); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, cache.Key(formatSVG, []byte(dot))); hit {
		t.Error("cache clear should drop rendered SVGs")
	}
	if err := execute(t, "cache", "clear"); err != nil {
		t.Errorf("clearing an empty render cache: %v", err)
	}
}

func TestFlagOr(t *testing.T) {
	var radius int
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().IntVar(&radius, "radius", 10, "")

	if got := flagOr(cmd, "radius", radius, 3); got != 3 {
		t.Errorf("unset flag: flagOr() = %d, want fallback 3", got)
	}
	if err := cmd.Flags().Set("radius", "7"); err != nil {
		t.Fatal(err)
	}
	if got := flagOr(cmd, "radius", radius, 3); got != 7 {
		t.Errorf("set flag: flagOr() = %d, want 7", got)
	}
}

func TestFmtIDs(t *testing.T) {
	tests := []struct {
		ids  []int
		want string
	}{
		{nil, ""},
		{[]int{1, 2, 3}, "1, 2, 3"},
		{[]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, "1, 2, 3, 4, … 2 more …, 7, 8, 9, 10"},
	}
	for _, tt := range tests {
		if got := fmtIDs(tt.ids); got != tt.want {
			t.Errorf("fmtIDs(%v) = %q, want %q", tt.ids, got, tt.want)
		}
	}
}
