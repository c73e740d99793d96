package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/autodoc/internal/docubot"
	"github.com/codalotl/autodoc/internal/llmcomplete"
)

const greeterJava = `public class Greeter {
    public String greet(String name) {
        return "Hello " + name;
    }
}
`

type harness struct {
	dir    string
	env    map[string]string
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "home"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "work"), 0o755))
	return &harness{dir: dir, env: map[string]string{}}
}

func (h *harness) run(args ...string) (int, error) {
	h.out.Reset()
	h.errOut.Reset()
	return Run(append([]string{"autodoc"}, args...), &RunOptions{
		In:      bytes.NewReader(nil),
		Out:     &h.out,
		Err:     &h.errOut,
		Getenv:  func(k string) string { return h.env[k] },
		HomeDir: filepath.Join(h.dir, "home"),
		WorkDir: filepath.Join(h.dir, "work"),
	})
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, "work", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func withMock(t *testing.T, m *llmcomplete.Mock) {
	t.Helper()
	prev := newGenerator
	newGenerator = func(llmcomplete.Config) docubot.Generator { return m }
	t.Cleanup(func() { newGenerator = prev })
}

func TestHelp(t *testing.T) {
	h := newHarness(t)
	code, err := h.run("--help")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, h.out.String(), "autodoc")
	assert.Empty(t, h.errOut.String())
}

func TestAtHelp(t *testing.T) {
	h := newHarness(t)
	code, err := h.run("at", "--help")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, h.out.String(), "documents the type alone")
	assert.Contains(t, h.out.String(), "the type and all its members")
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"at", "Greeter.java"},
		{"file"},
		{"version", "extra"},
		{"--no-such-flag"},
		{"frobnicate"},
	} {
		code, err := h.run(args...)
		assert.Error(t, err, args)
		assert.Equal(t, 2, code, args)
		assert.NotEmpty(t, h.errOut.String(), args)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	code, err := h.run("version")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "autodoc "+Version+"\n", h.out.String())
}

func TestProviders(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("providers")
	require.NoError(t, err)
	out := h.out.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "openai")
	assert.Contains(t, out, "$OPENAI_API_KEY")
	assert.Contains(t, out, "custom")
}

func TestConfigCommand(t *testing.T) {
	h := newHarness(t)
	h.env["AUTODOC_API_KEY"] = "sk-very-secret"
	h.write(t, ".autodoc/config.yaml", "comment_language: French\n")

	code, err := h.run("config", "--model", "gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	out := h.out.String()
	assert.NotContains(t, out, "sk-very-secret")
	assert.Contains(t, out, "# env AUTODOC_API_KEY")
	assert.Contains(t, out, "model: gpt-4.1 # flag")
	assert.Contains(t, out, "comment_language: French # yaml_file")
}

func TestConfigInvalid(t *testing.T) {
	h := newHarness(t)
	h.write(t, ".autodoc/config.yaml", "max_retries: 0\n")
	code, err := h.run("config")
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.errOut.String(), "max_retries must be >= 1")
}

func TestAtDryRun(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "Greeter.java", greeterJava)
	m := llmcomplete.NewMock(map[string]string{"greet(": "/** Greets name. */"})
	withMock(t, m)

	code, err := h.run("at", "--dry-run", "--no-progress", path, "3:9")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, greeterJava, string(got), "dry run leaves the file alone")

	assert.Contains(t, h.out.String(), "+    /** Greets name. */")
	assert.Contains(t, h.errOut.String(), "Documentation complete: 1 completed, 0 failed, 0 skipped")
	require.Len(t, m.Requests(), 1)
	assert.Equal(t, "Java", m.Requests()[0].Language)
}

func TestFileWrites(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "Greeter.java", greeterJava)
	withMock(t, &llmcomplete.Mock{
		Keys:      []string{"class Greeter", "greet("},
		Responses: map[string]string{"class Greeter": "/** Greets people. */", "greet(": "/** Greets name. */"},
	})

	metricsFile := filepath.Join(h.dir, "metrics.prom")
	code, err := h.run("file", "--metrics-file", metricsFile, path)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `/** Greets people. */
public class Greeter {
    /** Greets name. */
    public String greet(String name) {
        return "Hello " + name;
    }
}
`, string(got))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "autodoc_tasks_total")
}

func TestFailedRunExitCode(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "Greeter.java", greeterJava)
	withMock(t, &llmcomplete.Mock{
		Errors: map[string]error{"greet(": &llmcomplete.Error{Kind: llmcomplete.KindRateLimit, StatusCode: 429}},
	})

	code, err := h.run("at", "--no-progress", path, "3:9")
	require.Error(t, err)
	assert.Equal(t, 1, code)
	errOut := h.errOut.String()
	assert.Contains(t, errOut, "warning: Documentation failed for greet: Request rate exceeded. Try again later.")
	assert.NotContains(t, errOut, "Error: ", "the run already reported its failure")
}

func TestNothingToDocument(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "Empty.java", "// nothing here\n")
	withMock(t, llmcomplete.NewMock(nil))

	code, err := h.run("file", path)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, h.errOut.String(), "Nothing to document.")
}

func TestCheck(t *testing.T) {
	var status atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if code := int(status.Load()); code != 0 {
			w.WriteHeader(code)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad key"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "c", "object": "chat.completion", "created": 1, "model": "test-model",
			"choices": []any{map[string]any{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": "OK"}}},
		})
	}))
	defer srv.Close()

	h := newHarness(t)
	h.env["AUTODOC_BASE_URL"] = srv.URL
	h.env["AUTODOC_API_KEY"] = "k"

	code, err := h.run("check", "--provider", "custom", "--model", "test-model")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, h.out.String(), "using model test-model")

	status.Store(http.StatusUnauthorized)
	code, err = h.run("check", "--provider", "custom", "--model", "test-model")
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.errOut.String(), "The API key is invalid or expired.")
}

func TestParsePosition(t *testing.T) {
	src := []byte("ab\ncde\n\nf")
	tests := []struct {
		pos     string
		want    int
		wantErr bool
	}{
		{pos: "1:1", want: 0},
		{pos: "2:2", want: 4},
		{pos: "2:4", want: 6},
		{pos: "3:1", want: 7},
		{pos: "4:1", want: 8},
		{pos: "5", want: 5},
		{pos: "0", want: 0},
		{pos: "2:5", wantErr: true},
		{pos: "9:1", wantErr: true},
		{pos: "0:1", wantErr: true},
		{pos: "x", wantErr: true},
		{pos: "99", wantErr: true},
		{pos: "-1", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePosition(src, tt.pos)
		if tt.wantErr {
			assert.Error(t, err, tt.pos)
			continue
		}
		require.NoError(t, err, tt.pos)
		assert.Equal(t, tt.want, got, tt.pos)
	}
}

func TestErrorTypes(t *testing.T) {
	base := errors.New("boom")
	assert.ErrorIs(t, &usageError{err: base}, base)
	assert.ErrorIs(t, &reportedError{err: base}, base)
}

func TestDirDryRun(t *testing.T) {
	h := newHarness(t)
	h.write(t, "src/Greeter.java", greeterJava)
	h.write(t, "vendor/lib/Vendored.java", "public class Vendored {}\n")
	withMock(t, &llmcomplete.Mock{
		Keys:      []string{"class Greeter", "greet(", "Vendored"},
		Responses: map[string]string{"class Greeter": "/** Greets people. */", "greet(": "/** Greets name. */", "Vendored": "/** Nope. */"},
	})

	code, err := h.run("dir", "--dry-run", "--no-progress", filepath.Join(h.dir, "work"))
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	out := h.out.String()
	assert.Contains(t, out, "Greeter.java")
	assert.Contains(t, out, "+/** Greets people. */")
	assert.Contains(t, out, "+    /** Greets name. */")
	assert.NotContains(t, out, "Vendored")
	assert.Contains(t, h.errOut.String(), "2 completed, 0 failed, 0 skipped")
}
