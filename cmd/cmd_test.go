package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearRemoteEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NOTES_REMOTE_URL", "SUPABASE_URL", "NOTES_REMOTE_KEY", "SUPABASE_KEY"} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNoteInput(t *testing.T) {
	f := &noteFlags{title: "  "}
	_, err := f.input(strings.NewReader(""))
	assert.ErrorIs(t, err, errBlankTitle)

	f = &noteFlags{title: "t", content: "-"}
	in, err := f.input(strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", in.Content)
}

func TestNoteCommands(t *testing.T) {
	clearRemoteEnv(t)
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	body := "log:\n  level: error\n  file: \"\"\nlocal:\n  type: sqlite\n  save-path: " + filepath.Join(dir, "kv.db") + "\n"
	require.NoError(t, os.WriteFile(config, []byte(body), 0644))

	out, err := execute(t, "", "note", "create", "-c", config, "--title", "hello", "--content", "world")
	require.NoError(t, err)
	var created struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	require.NoError(t, sonic.UnmarshalString(out, &created))
	assert.True(t, strings.HasPrefix(created.ID, "local-"))
	assert.Equal(t, "world", created.Content)

	out, err = execute(t, "piped", "note", "update", created.ID, "-c", config, "--title", "hello2", "--content", "-")
	require.NoError(t, err)
	require.NoError(t, sonic.UnmarshalString(out, &created))
	assert.Equal(t, "piped", created.Content)

	out, err = execute(t, "", "note", "list", "-c", config)
	require.NoError(t, err)
	var list struct {
		List []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"list"`
		Configured bool `json:"configured"`
	}
	require.NoError(t, sonic.UnmarshalString(out, &list))
	assert.False(t, list.Configured)
	require.Len(t, list.List, 1)
	assert.Equal(t, "hello2", list.List[0].Title)

	out, err = execute(t, "", "note", "delete", created.ID, "-c", config)
	require.NoError(t, err)
	assert.Contains(t, out, `"deleted": true`)
}

func TestNoteEphemeral(t *testing.T) {
	clearRemoteEnv(t)
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	body := "log:\n  level: error\n  file: \"\"\nlocal:\n  type: localfs\n  save-path: " + filepath.Join(dir, "local") + "\n"
	require.NoError(t, os.WriteFile(config, []byte(body), 0644))

	_, err := execute(t, "", "note", "create", "-c", config, "--ephemeral", "--title", "gone", "--content", "")
	require.NoError(t, err)

	out, err := execute(t, "", "note", "list", "-c", config, "--ephemeral=false")
	require.NoError(t, err)
	assert.Contains(t, out, `"list": []`)
}

func TestResolveConfigCreatesDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	configDefault = "server:\n  http-port: \":9100\"\n"

	path, err := resolveConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigPath, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configDefault, string(data))

	path, err = resolveConfig("custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", path)

	_, err = resolveConfig("config")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Personal Notes v")
}
