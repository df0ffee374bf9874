package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, opts Options, files map[string]string) (*Processor, *test.Hook) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	p, err := NewProcessor(fs, opts, log)
	require.NoError(t, err)
	return p, hook
}

func resultPaths(results []FileResult) []string {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	return paths
}

func TestProcess_PatternOrderThenMatchOrder(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, Options{}, map[string]string{
		"/data/a1.txt": "1",
		"/data/a2.txt": "2",
		"/data/b1.txt": "3",
		"/data/b2.txt": "4",
	})

	results, err := p.Process(context.Background(), []string{"/data/b*.txt", "/data/a*.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/b1.txt", "/data/b2.txt", "/data/a1.txt", "/data/a2.txt"}, resultPaths(results))
}

func TestProcess_DuplicatesAcrossPatternsAreKept(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, Options{}, map[string]string{
		"/data/a1.txt": "1",
		"/data/a2.txt": "2",
	})

	results, err := p.Process(context.Background(), []string{"/data/a1.txt", "/data/a*.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a1.txt", "/data/a1.txt", "/data/a2.txt"}, resultPaths(results))
}

func TestProcess_NothingMatches(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, Options{}, map[string]string{"/data/a.txt": "abc"})

	results, err := p.Process(context.Background(), []string{"/data/missing.txt", "/data/*.zip"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcess_DirectoriesAreDropped(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, Options{}, map[string]string{
		"/data/a.txt":         "abc",
		"/data/dir.d/inner":   "x",
		"/data/empty.txt":     "",
		"/data/other.d/inner": "y",
	})

	results, err := p.Process(context.Background(), []string{"/data/*"})
	require.NoError(t, err)
	require.Equal(t, []string{"/data/a.txt", "/data/empty.txt"}, resultPaths(results))
	assert.Equal(t, Outcome{Kind: Hash, Sum: 0}, results[1].Outcome)
}

func TestProcess_WildcardSkipsDotfiles(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, Options{}, map[string]string{
		"/data/.hidden": "h",
		"/data/shown":   "s",
	})

	results, err := p.Process(context.Background(), []string{"/data/*", "/data/.h*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/shown", "/data/.hidden"}, resultPaths(results))
}

func TestProcess_WildcardSkipsHiddenDirectories(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, Options{}, map[string]string{
		"/data/.hid/x.txt": "hidden dir",
		"/data/vis/x.txt":  "visible dir",
	})

	results, err := p.Process(context.Background(), []string{"/data/*/x.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/vis/x.txt"}, resultPaths(results))

	// A dot-prefixed element in the pattern opts back in.
	results, err = p.Process(context.Background(), []string{"/data/.h*/x.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/.hid/x.txt"}, resultPaths(results))
}

func TestHiddenFromPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern, match string
		want           bool
	}{
		{"*", "shown", false},
		{"*", ".hidden", true},
		{".*", ".hidden", false},
		{"*/x.txt", ".hid/x.txt", true},
		{"./*/x.txt", ".hid/x.txt", true},
		{".hid/*.txt", ".hid/x.txt", false},
		{"/data/*/*", "/data/vis/.x", true},
		{"/data/.hid/x.txt", "/data/.hid/x.txt", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hiddenFromPattern(tt.pattern, tt.match), "%s vs %s", tt.pattern, tt.match)
	}
}

func TestProcess_InvalidPatternIsSkipped(t *testing.T) {
	t.Parallel()

	p, hook := newTestProcessor(t, Options{}, map[string]string{"/data/a.txt": "abc"})

	results, err := p.Process(context.Background(), []string{"/data/[", "/data/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a.txt"}, resultPaths(results))

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["pattern"] == "/data/[" {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning for the malformed pattern")
}

func TestProcess_DisplayNames(t *testing.T) {
	t.Parallel()

	files := map[string]string{"/data/a.txt": "abc"}
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"basename by default", Options{}, "a.txt"},
		{"omitted", Options{OmitPath: true}, ""},
		{"verbose shows full path", Options{Verbose: 1}, "/data/a.txt"},
		{"verbose overrides omit", Options{Verbose: 2, OmitPath: true}, "/data/a.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProcessor(t, tt.opts, files)
			results, err := p.Process(context.Background(), []string{"/data/a.txt"})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0].DisplayName)
		})
	}
}

func TestProcess_CancelledBetweenFiles(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, Options{}, map[string]string{"/data/a.txt": "abc"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, []string{"/data/a.txt"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_PermissionDeniedDoesNotAbortBatch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("chmod does not revoke read access on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	t.Parallel()

	dir := t.TempDir()
	locked := filepath.Join(dir, "a-locked.txt")
	open := filepath.Join(dir, "b-open.txt")
	require.NoError(t, os.WriteFile(locked, []byte("secret"), 0644))
	require.NoError(t, os.WriteFile(open, []byte("abc"), 0644))
	require.NoError(t, os.Chmod(locked, 0))

	log, _ := test.NewNullLogger()
	p, err := NewProcessor(afero.NewOsFs(), Options{}, log)
	require.NoError(t, err)

	results, err := p.Process(context.Background(), []string{filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a-locked.txt Permission denied", renderResult(results[0]))
	assert.Equal(t, "b-open.txt 352441C2", renderResult(results[1]))
}

func TestEscapeGlob(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no glob escaping on windows")
	}
	t.Parallel()

	assert.Equal(t, "plain.txt", escapeGlob("plain.txt"))
	assert.Equal(t, `back\slash`, escapeGlob(`back\slash`))
	assert.Equal(t, `a\*b\?.txt`, escapeGlob("a*b?.txt"))
	assert.Equal(t, `x\[1].txt`, escapeGlob("x[1].txt"))

	p, _ := newTestProcessor(t, Options{}, map[string]string{
		"/data/x[1].txt": "literal",
		"/data/x1.txt":   "class match",
	})
	results, err := p.Process(context.Background(), []string{"/data/" + escapeGlob("x[1].txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/x[1].txt"}, resultPaths(results))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := summarize([]FileResult{
		{Outcome: Outcome{Kind: Hash, Sum: 1}},
		{Outcome: Outcome{Kind: PermissionDenied}},
		{Outcome: Outcome{Kind: Hash}},
	})
	assert.Equal(t, Summary{Processed: 3, Hashed: 2, Denied: 1}, s)
}
