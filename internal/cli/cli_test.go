package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir and clears the env the config reads,
// then returns a fresh data dir.
func isolate(t *testing.T) string {
	t.Helper()
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"INKWELL_CONFIG", "INKWELL_DATA_DIR", "INKWELL_ADDR", "INKWELL_REMOTE",
		"INKWELL_FORMAT", "INKWELL_AUTO_PUBLISH", "INKWELL_SNAPSHOT_DRIVER", "INKWELL_SNAPSHOT_DIR",
		"DATA_DIR", "PORT",
	} {
		t.Setenv(k, "")
	}
	return filepath.Join(t.TempDir(), "data")
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := runCLI(t, args...)
	require.NoError(t, err, "inkwell %v\nstderr:\n%s", args, stderr)
	return stdout
}

func mustJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()
	out := mustRun(t, args...)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func mustJSONList(t *testing.T, args ...string) []map[string]any {
	t.Helper()
	out := mustRun(t, args...)
	var v []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestPensLifecycle(t *testing.T) {
	dir := isolate(t)

	p := mustJSON(t, "--dir", dir, "pens", "add", "--brand", "Pilot", "--model", "Custom 74", "--nib-size", "F")
	id, _ := p["id"].(string)
	require.NotEmpty(t, id)
	mustJSON(t, "--dir", dir, "pens", "add", "--brand", "Lamy", "--model", "2000", "--nib-size", "EF")

	rows := mustJSONList(t, "--dir", dir, "pens", "list", "--sort", "brand")
	require.Len(t, rows, 2)
	assert.Equal(t, "Lamy", rows[0]["pen"].(map[string]any)["brand"])

	edited := mustJSON(t, "--dir", dir, "pens", "edit", id, "--color", "Blue")
	assert.Equal(t, "Blue", edited["color"])
	assert.Equal(t, "Custom 74", edited["model"], "unset flags keep their value")

	b, err := os.ReadFile(filepath.Join(dir, "pens.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"color": "Blue"`)

	mustJSON(t, "--dir", dir, "pens", "rm", id)
	rows = mustJSONList(t, "--dir", dir, "pens", "list")
	require.Len(t, rows, 1)
}

func TestValidationAndNotFoundExitCodes(t *testing.T) {
	dir := isolate(t)

	_, stderr, err := runCLI(t, "--dir", dir, "pens", "add", "--brand", "Pilot")
	require.Error(t, err)
	assert.Equal(t, ExitInvalid, ExitCode(err))
	assert.Contains(t, stderr, "invalid pen: missing model")

	_, _, err = runCLI(t, "--dir", dir, "inks", "edit", "nope", "--name", "x")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))

	_, _, err = runCLI(t, "--dir", dir, "pens", "list", "--sort", "weight")
	require.Error(t, err)
	assert.Equal(t, ExitInvalid, ExitCode(err))

	_, _, err = runCLI(t, "--dir", dir, "refills", "list", "--per-page", "7")
	require.Error(t, err)
	assert.Equal(t, ExitInvalid, ExitCode(err))
}

func TestRefillsAndViews(t *testing.T) {
	dir := isolate(t)

	pilot := mustJSON(t, "--dir", dir, "pens", "add", "--brand", "Pilot", "--model", "Falcon")["id"].(string)
	sailor := mustJSON(t, "--dir", dir, "pens", "add", "--brand", "Sailor", "--model", "1911")["id"].(string)
	kon := mustJSON(t, "--dir", dir, "inks", "add", "--brand", "Pilot", "--collection", "Iroshizuku", "--name", "Kon-peki")["id"].(string)
	yama := mustJSON(t, "--dir", dir, "inks", "add", "--brand", "Sailor", "--name", "Yama-dori")["id"].(string)

	mustJSON(t, "--dir", dir, "refills", "add", "--pen", pilot, "--ink", kon, "--date", "2024-01-05")
	mix := mustJSON(t, "--dir", dir, "refills", "add", "--pen", sailor, "--ink", yama+","+kon, "--date", "2024-02-01", "--notes", "mix")
	assert.Equal(t, []any{yama, kon}, mix["inkIds"])

	_, _, err := runCLI(t, "--dir", dir, "refills", "add", "--pen", pilot)
	require.Error(t, err)
	assert.Equal(t, ExitInvalid, ExitCode(err))

	page := mustJSON(t, "--dir", dir, "refills", "list", "--brand", "Pilot", "--per-page", "5")
	assert.EqualValues(t, 1, page["total"])
	assert.EqualValues(t, 5, page["size"])

	all := mustJSON(t, "--dir", dir, "refills", "list")
	rows := all["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-02-01", rows[0].(map[string]any)["date"])

	inks := mustJSONList(t, "--dir", dir, "inks", "list", "--sort", "usageCount", "--desc")
	assert.Equal(t, "Kon-peki", inks[0]["ink"].(map[string]any)["name"])
	assert.EqualValues(t, 2, inks[0]["usageCount"])

	table := mustRun(t, "--dir", dir, "--format", "table", "inked")
	lines := strings.Split(strings.TrimSpace(table), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "PEN"))
	assert.Contains(t, lines[1], "Sailor 1911")
	assert.Contains(t, lines[1], "Yama-dori + Kon-peki")

	md := mustRun(t, "--dir", dir, "report", "--raw")
	assert.Contains(t, md, "2 pens, 2 inks, 2 refills.")
	assert.Contains(t, md, "## Currently inked")

	rendered := mustRun(t, "--dir", dir, "report", "--style", "notty")
	assert.Contains(t, rendered, "Currently inked")
}

func TestHistoryRecordsSaves(t *testing.T) {
	dir := isolate(t)
	mustJSON(t, "--dir", dir, "inks", "add", "--brand", "Diamine", "--name", "Oxblood")

	events := mustJSONList(t, "--dir", dir, "history", "--limit", "5")
	require.Len(t, events, 1)
	assert.Equal(t, "save", events[0]["kind"])
	assert.Equal(t, "inks", events[0]["resource"])
	assert.Equal(t, true, events[0]["ok"])
}

func TestSnapshotCreateListRestore(t *testing.T) {
	dir := isolate(t)
	snaps := filepath.Join(t.TempDir(), "snaps")
	t.Setenv("INKWELL_SNAPSHOT_DIR", snaps)

	mustJSON(t, "--dir", dir, "pens", "add", "--brand", "Pilot", "--model", "Falcon")
	created := mustJSON(t, "--dir", dir, "snapshot", "create")
	id := created["id"].(string)
	require.NotEmpty(t, id)

	list := mustJSONList(t, "--dir", dir, "snapshot", "list")
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	mustJSON(t, "--dir", dir, "pens", "add", "--brand", "Lamy", "--model", "Safari")
	require.Len(t, mustJSONList(t, "--dir", dir, "pens", "list"), 2)

	mustJSON(t, "--dir", dir, "snapshot", "restore", id)
	pens := mustJSONList(t, "--dir", dir, "pens", "list")
	require.Len(t, pens, 1)
	assert.Equal(t, "Falcon", pens[0]["pen"].(map[string]any)["model"])

	_, _, err := runCLI(t, "--dir", dir, "snapshot", "restore", "20000101T000000Z")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "inkwell.yaml")

	mustJSON(t, "config", "init", "--path", cfgPath)
	_, _, err := runCLI(t, "config", "init", "--path", cfgPath)
	require.Error(t, err, "refuses to overwrite")

	require.NoError(t, os.WriteFile(cfgPath, []byte("data_dir: "+dir+"\nformat: table\nsnapshot:\n  driver: memory\n"), 0o644))
	show := mustJSON(t, "--config", cfgPath, "--format", "json", "config", "show")
	assert.Equal(t, dir, show["dataDir"])
	assert.Equal(t, ":8080", show["addr"])
	assert.Equal(t, "memory", show["snapshot"].(map[string]any)["driver"])
	assert.Equal(t, cfgPath, show["file"])

	t.Setenv("DATA_DIR", "/srv/legacy")
	t.Setenv("PORT", "3000")
	show = mustJSON(t, "config", "show")
	assert.Equal(t, "/srv/legacy", show["dataDir"])
	assert.Equal(t, ":3000", show["addr"])

	t.Setenv("INKWELL_DATA_DIR", "/srv/inkwell")
	show = mustJSON(t, "config", "show")
	assert.Equal(t, "/srv/inkwell", show["dataDir"])

	show = mustJSON(t, "--dir", "/flag/wins", "config", "show")
	assert.Equal(t, "/flag/wins", show["dataDir"])
}

func TestVersion(t *testing.T) {
	isolate(t)
	out := mustRun(t, "version", "--short")
	assert.Contains(t, out, "dev")
}

func TestDocs(t *testing.T) {
	isolate(t)
	topics := mustJSON(t, "docs")
	assert.Equal(t, []any{"config", "data-files", "nib-sizes", "publishing"}, topics["topics"])

	out := mustRun(t, "docs", "publishing", "--raw")
	assert.Contains(t, out, "inkwell: update collections")

	_, _, err := runCLI(t, "docs", "nope")
	require.Error(t, err)
}

func TestRemoteOnlyCommandsNeedRemote(t *testing.T) {
	dir := isolate(t)
	_, _, err := runCLI(t, "--dir", dir, "is-local")
	require.Error(t, err)
	_, _, err = runCLI(t, "--dir", dir, "health")
	require.Error(t, err)
	_, _, err = runCLI(t, "--remote", "http://127.0.0.1:1", "history")
	require.Error(t, err)
}

func TestReviewAndPublishWithGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := isolate(t)

	initOut := mustJSON(t, "--dir", dir, "init")
	assert.Equal(t, true, initOut["git"].(map[string]any)["isRepo"])
	for _, kv := range [][2]string{{"user.email", "test@example.com"}, {"user.name", "Test"}, {"commit.gpgsign", "false"}} {
		c := exec.Command("git", "config", kv[0], kv[1])
		c.Dir = dir
		out, err := c.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	mustJSON(t, "--dir", dir, "pens", "add", "--brand", "Pilot", "--model", "Falcon")

	d := mustJSON(t, "--dir", dir, "review", "--json")
	assert.Equal(t, true, d["hasChanges"])
	assert.Contains(t, d["diff"], `"brand": "Pilot"`)

	text := mustRun(t, "--dir", dir, "review")
	assert.Contains(t, text, "+    \"model\": \"Falcon\",")
	assert.Contains(t, text, "removed")

	// No remote: the commit lands, the push fails.
	_, stderr, err := runCLI(t, "--dir", dir, "publish")
	require.Error(t, err)
	assert.Equal(t, ExitPublish, ExitCode(err))
	assert.NotEmpty(t, stderr)

	d = mustJSON(t, "--dir", dir, "review", "--json")
	assert.Equal(t, false, d["hasChanges"])

	events := mustJSONList(t, "--dir", dir, "history")
	require.NotEmpty(t, events)
	assert.Equal(t, "publish", events[0]["kind"])
	assert.Equal(t, false, events[0]["ok"])
}
