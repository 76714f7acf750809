package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactrelay/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(Config{OutputWriter: &out})
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"a":1},"two"]`))
	}))
	defer srv.Close()

	out, err := execute(t, "fetch", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `<div id="data"><p>{&#34;a&#34;:1}</p><p>&#34;two&#34;</p></div>`)
}

func TestFetchCommand_CustomPageAndOutputFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[1]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	pagePath := filepath.Join(dir, "page.html")
	outPath := filepath.Join(dir, "out.html")
	require.NoError(t, os.WriteFile(pagePath, []byte(`<html><body><ul class="items"></ul></body></html>`), 0o600))

	_, err := execute(t, "fetch", "--url", srv.URL, "--page", pagePath, "--selector", "ul.items", "--out", outPath)
	require.NoError(t, err)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), `<ul class="items"><p>1</p></ul>`)
}

func TestFetchCommand_FailureWritesUnchangedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	out, err := execute(t, "fetch", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `<div id="data"></div>`)
	assert.NotContains(t, out, "<p>")
}

func TestSubmitCommand(t *testing.T) {
	var got model.ContactSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"message":"Message sent successfully!"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "submit", "--relay", srv.URL, "--name", "Ada", "--email", "ada@example.com", "--message", "Hello")
	require.NoError(t, err)

	var resp model.RelayResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, model.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"}, got)
}

func TestSubmitCommand_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out, err := execute(t, "submit", "--relay", srv.URL, "--name", "Ada")
	require.Error(t, err)
	assert.True(t, strings.Contains(out, `"success": false`))
}
