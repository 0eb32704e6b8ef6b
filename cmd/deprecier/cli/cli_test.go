package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Command(t *testing.T) {
	root := Command(Identification{Name: "test-name", Version: "test-version"})

	require.Equal(t, "test-name", root.Name())
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"verify", "publish", "plan", "rules"}, names)
}

type harness struct {
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
	env    []string
}

func newHarness(t *testing.T, policy string) *harness {
	t.Helper()
	h := &harness{dir: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "package.json"), []byte(`{"name":"left-pad"}`), 0o644))
	if policy != "" {
		require.NoError(t, os.WriteFile(filepath.Join(h.dir, ".deprecier.yaml"), []byte(policy), 0o644))
	}
	return h
}

func (h *harness) run(args ...string) int {
	id := Identification{
		Name:    "deprecier",
		Version: "test",
		Stdout:  &h.stdout,
		Stderr:  &h.stderr,
		Environ: func() []string { return h.env },
	}
	return Run(id, append(args, "--cwd", h.dir, "--log-level", "quiet"))
}

const policy = `
deprecationMessage: Please upgrade to 2.x
rules:
  - rule: support-latest
    options: {count: 1, granularity: major}
  - deprecate-all
`

func TestVerify(t *testing.T) {
	h := newHarness(t, policy)

	require.Equal(t, 0, h.run("verify"), h.stderr.String())
	assert.Equal(t, "1. support-latest(count=1, granularity=major) -> support\n2. deprecate-all -> deprecate\n", h.stdout.String())
}

func TestVerifyInvalidPolicy(t *testing.T) {
	h := newHarness(t, "rules:\n  - rule: support-latest\n    options: {count: zero}\n")

	assert.Equal(t, 1, h.run("verify"))
	assert.Contains(t, h.stderr.String(), `option "count" must be an integer`)
}

func TestVerifyUnknownEcosystem(t *testing.T) {
	h := newHarness(t, "ecosystem: cobol\n")

	assert.Equal(t, 1, h.run("verify"))
	assert.Contains(t, h.stderr.String(), "unknown ecosystem: cobol")
}

func TestPlan(t *testing.T) {
	h := newHarness(t, policy)

	require.Equal(t, 0, h.run("plan", "1.0.0", "2.0.0", "2.1.0"), h.stderr.String())

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"VERSION", "ACTION", "RULE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1.0.0", "deprecate", "deprecate-all"}, strings.Fields(lines[1]))
	assert.Equal(t, "2.0.0", strings.Fields(lines[2])[0])
	assert.Equal(t, "support", strings.Fields(lines[2])[1])
}

func TestPlanInvalidVersion(t *testing.T) {
	h := newHarness(t, policy)

	assert.Equal(t, 1, h.run("plan", "1.0"))
	assert.Contains(t, h.stderr.String(), "invalid version")
}

func TestRules(t *testing.T) {
	h := newHarness(t, "")

	require.Equal(t, 0, h.run("rules"))

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"RULE", "ACTION"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"support-prerelease-if-not-released", "support"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"deprecate-all", "deprecate"}, strings.Fields(lines[5]))
}

type npmServer struct {
	mu  sync.Mutex
	doc map[string]any
}

func (s *npmServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.URL.Path == "/-/whoami":
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"username":"releaser"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/left-pad":
		_ = json.NewEncoder(w).Encode(s.doc)
	case r.Method == http.MethodPut && r.URL.Path == "/left-pad":
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &s.doc)
		_, _ = w.Write([]byte(`{"ok":true}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *npmServer) message(version string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.doc["versions"].(map[string]any)[version].(map[string]any)
	msg, _ := v["deprecated"].(string)
	return msg
}

func newNPMServer() *npmServer {
	return &npmServer{doc: map[string]any{
		"name": "left-pad",
		"versions": map[string]any{
			"1.0.0": map[string]any{"version": "1.0.0"},
			"2.0.0": map[string]any{"version": "2.0.0"},
		},
		"time": map[string]any{
			"1.0.0": "2016-01-01T00:00:00Z",
			"2.0.0": "2017-01-01T00:00:00Z",
		},
	}}
}

func TestPublish(t *testing.T) {
	npm := newNPMServer()
	server := httptest.NewServer(npm)
	defer server.Close()

	h := newHarness(t, policy)
	h.env = []string{"NPM_TOKEN=tok"}

	require.Equal(t, 0, h.run("publish", "--registry", server.URL), h.stderr.String())
	assert.Equal(t,
		"deprecated 1.0.0\n"+
			"left-pad: 1 deprecated, 0 failed, 1 kept\n",
		h.stdout.String())
	assert.Equal(t, "Please upgrade to 2.x", npm.message("1.0.0"))
	assert.Empty(t, npm.message("2.0.0"))
}

func TestPublishDryRunFromEnv(t *testing.T) {
	npm := newNPMServer()
	server := httptest.NewServer(npm)
	defer server.Close()

	h := newHarness(t, policy)
	h.env = []string{"NPM_TOKEN=tok"}
	t.Setenv("DEPRECIER_DRY_RUN", "true")

	require.Equal(t, 0, h.run("publish", "--registry", server.URL), h.stderr.String())
	assert.Equal(t, "dry run: 1 version(s) would be deprecated\n", h.stdout.String())
	assert.Empty(t, npm.message("1.0.0"))
}

func TestPublishRegistryFlagBeatsEnvironment(t *testing.T) {
	npm := newNPMServer()
	server := httptest.NewServer(npm)
	defer server.Close()

	h := newHarness(t, policy)
	h.env = []string{"NPM_TOKEN=tok", "NPM_CONFIG_REGISTRY=http://127.0.0.1:1"}

	require.Equal(t, 0, h.run("publish", "--dry-run", "--max-retries", "0", "--registry", server.URL), h.stderr.String())
	assert.Equal(t, "dry run: 1 version(s) would be deprecated\n", h.stdout.String())
}

func TestPublishWithoutToken(t *testing.T) {
	npm := newNPMServer()
	server := httptest.NewServer(npm)
	defer server.Close()

	h := newHarness(t, policy)

	assert.Equal(t, 1, h.run("publish", "--registry", server.URL))
	assert.Contains(t, h.stderr.String(), "NPM_TOKEN is not set")
	assert.Empty(t, npm.message("1.0.0"))
}
