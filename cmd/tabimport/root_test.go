package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/tabimport/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// The command installs its logger as the slog default, so these tests run
// one after another.
func TestRootCommand_ImportsInputFolder(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "csv_files")
	require.NoError(t, os.Mkdir(input, 0o750))
	writeFile(t, filepath.Join(input, "people.csv"), "name,age\nstring,int\nAlice,30\nBob,x\n")

	output := filepath.Join(dir, "default.realm")
	out, err := execute(t, "--input", input, "--output", output, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "sources=1 skipped=0 accepted=1 rejected=1 schemas=1", strings.TrimSpace(out))

	st, err := store.OpenSQLite(context.Background(), output)
	require.NoError(t, err)
	defer st.Close()

	n, err := st.Count(context.Background(), "People")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRootCommand_BoltStoreWithArguments(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hero_list.tsv")
	writeFile(t, file, "name\tpower\nGoku\t9001\nVegeta\t8000\n")

	output := filepath.Join(dir, "heroes.bolt")
	out, err := execute(t, "--store", "bolt", "--output", output, "--log-level", "error", file)
	require.NoError(t, err)
	assert.Contains(t, out, "accepted=2")

	st, err := store.OpenBolt(output)
	require.NoError(t, err)
	defer st.Close()

	n, err := st.Count(context.Background(), "HeroList")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRootCommand_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "orders.csv")
	writeFile(t, file, "id,total\n1,9.5\n")

	output := filepath.Join(dir, "never.realm")
	out, err := execute(t, "--dry-run", "--output", output, "--log-level", "error", "--files", file)
	require.NoError(t, err)
	assert.Contains(t, out, "accepted=1")
	assert.NoFileExists(t, output)
}

func TestRootCommand_InvalidFlags(t *testing.T) {
	_, err := execute(t, "--on-collision", "ignore", "--store", "realm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
	assert.Contains(t, err.Error(), "unknown collision policy")
}
