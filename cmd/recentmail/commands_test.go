package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/joshsymonds/recentmail/internal/credstore"
)

type fakeGmailServer struct {
	mu        sync.Mutex
	listQuery []url.Values
	gets      []string
}

func (f *fakeGmailServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/gmail/v1/users/me/labels":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"labels": []map[string]string{
				{"id": "L1", "name": "INBOX"},
				{"id": "L2", "name": "SENT"},
			},
		})
	case r.URL.Path == "/gmail/v1/users/me/messages":
		f.mu.Lock()
		f.listQuery = append(f.listQuery, r.URL.Query())
		f.mu.Unlock()
		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"messages":      []map[string]string{{"id": "m1", "threadId": "t1"}},
				"nextPageToken": "next",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "m2", "threadId": "t2"}},
		})
	case strings.HasPrefix(r.URL.Path, "/gmail/v1/users/me/messages/"):
		id := strings.TrimPrefix(r.URL.Path, "/gmail/v1/users/me/messages/")
		f.mu.Lock()
		f.gets = append(f.gets, id)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       id,
			"threadId": "thread-" + id,
			"snippet":  "snippet of " + id,
		})
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func (f *fakeGmailServer) snapshot() ([]url.Values, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.listQuery...), append([]string(nil), f.gets...)
}

type cliFixture struct {
	dir   string
	creds string
	token string
	api   *fakeGmailServer
	srv   *httptest.Server
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	dir := t.TempDir()
	api := &fakeGmailServer{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	token := filepath.Join(dir, "token.json")
	require.NoError(t, credstore.NewFileStore().Store(context.Background(), token, &oauth2.Token{
		AccessToken: "stored",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))
	return &cliFixture{dir: dir, creds: writeCredentials(t, dir), token: token, api: api, srv: srv}
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := &rootOptions{gmailOptions: []option.ClientOption{option.WithEndpoint(f.srv.URL + "/")}}
	cmd := buildRootCmd("test", opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	base := []string{"--credentials", f.creds, "--token", f.token, "--log-level", "error"}
	cmd.SetArgs(append(args, base...))
	err := cmd.Execute()
	return stdout.String(), err
}

func decodeIDs(t *testing.T, data []byte) []string {
	t.Helper()
	var payloads []map[string]any
	require.NoError(t, json.Unmarshal(data, &payloads))
	ids := make([]string, 0, len(payloads))
	for _, p := range payloads {
		ids = append(ids, fmt.Sprint(p["id"]))
	}
	return ids
}

func TestFetchPrintsJSONArrayInListingOrder(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "fetch")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, decodeIDs(t, []byte(out)))

	lists, gets := f.api.snapshot()
	assert.ElementsMatch(t, []string{"m1", "m2"}, gets)
	require.Len(t, lists, 2)
	assert.Equal(t, "L1", lists[0].Get("labelIds"))
	assert.Equal(t, "500", lists[0].Get("maxResults"))
	assert.Equal(t, "next", lists[1].Get("pageToken"))
}

func TestFetchUsesConfigValues(t *testing.T) {
	f := newCLIFixture(t)
	cfgPath := filepath.Join(f.dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
fetch:
  query: "from:config"
  label: SENT
  page_size: 100
`), 0o600))

	_, err := f.run(t, "fetch", "--config", cfgPath)
	require.NoError(t, err)
	lists, _ := f.api.snapshot()
	require.NotEmpty(t, lists)
	first := lists[0]
	assert.Equal(t, "from:config", first.Get("q"))
	assert.Equal(t, "L2", first.Get("labelIds"))
	assert.Equal(t, "100", first.Get("maxResults"))
}

func TestFetchFlagsOverrideConfig(t *testing.T) {
	f := newCLIFixture(t)
	cfgPath := filepath.Join(f.dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
fetch:
  query: "from:config"
  label: SENT
  page_size: 100
`), 0o600))

	out, err := f.run(t, "fetch", "--config", cfgPath,
		"--query", "from:flag",
		"--label", "INBOX",
		"--page-size", "50",
		"--rps", "100",
		"--concurrency", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, decodeIDs(t, []byte(out)))

	lists, _ := f.api.snapshot()
	require.NotEmpty(t, lists)
	first := lists[0]
	assert.Equal(t, "from:flag", first.Get("q"))
	assert.Equal(t, "L1", first.Get("labelIds"))
	assert.Equal(t, "50", first.Get("maxResults"))
}

func TestFetchSummary(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "fetch", "--summary")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "2 messages")
	assert.Contains(t, lines[1], "m1")
	assert.Contains(t, lines[1], "snippet of m1")
	assert.Contains(t, lines[2], "m2")
}

func TestFetchWritesJSONFile(t *testing.T) {
	f := newCLIFixture(t)
	t.Chdir(f.dir)

	out, err := f.run(t, "fetch", "--json", "out.json")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(f.dir, "out.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, decodeIDs(t, data))
}

func TestFetchUnknownLabel(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "fetch", "--label", "ARCHIVE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARCHIVE")
	lists, gets := f.api.snapshot()
	assert.Empty(t, lists)
	assert.Empty(t, gets)
}

func TestLabelsPrintsTable(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "labels")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%-30s %s\n%-30s %s\n", "INBOX", "L1", "SENT", "L2"), out)
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, exitCode(&buf, nil))
	assert.Empty(t, buf.String())

	assert.Equal(t, 1, exitCode(&buf, errors.New("get recent email: boom")))
	assert.Equal(t, "recentmail: get recent email: boom\n", buf.String())
}
