package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun(t *testing.T) {
	t.Run("print", func(t *testing.T) {
		code, out, _ := runCommand(t, "print")
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "type TransferBatch @entity(immutable: true)")
		assert.Contains(t, out, "input URI_filter")
		assert.Contains(t, out, "enum URI_orderBy")
	})

	t.Run("introspect", func(t *testing.T) {
		code, out, _ := runCommand(t, "introspect")
		assert.Equal(t, 0, code)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Contains(t, decoded, "__schema")
	})

	t.Run("check", func(t *testing.T) {
		code, out, _ := runCommand(t, "check")
		assert.Equal(t, 0, code)
		assert.Equal(t, "schema is valid\n", out)
	})

	t.Run("validate", func(t *testing.T) {
		dir := t.TempDir()
		good := writeFile(t, dir, "good.graphql", `{ uris(first: 10) { id value } }`)
		bad := writeFile(t, dir, "bad.graphql", `{ uris(first: 10, block: {number: 1, number_gte: 2}) { id } }`)

		code, out, _ := runCommand(t, "validate", good)
		assert.Equal(t, 0, code)
		assert.Equal(t, good+": ok\n", out)

		code, out, _ = runCommand(t, "validate", good, bad)
		assert.Equal(t, 1, code)
		assert.Contains(t, out, good+": ok")
		assert.Contains(t, out, bad+": graphql:")

		code, _, stderr := runCommand(t, "validate", filepath.Join(dir, "missing.graphql"))
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "missing.graphql")

		code, _, stderr = runCommand(t, "validate")
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "at least one query file")
	})

	t.Run("config file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "config.yaml", "schema:\n  default_first: 25\n  max_first: 30\n")
		dir := t.TempDir()
		query := writeFile(t, dir, "q.graphql", `{ uris(first: 31) { id } }`)

		code, out, _ := runCommand(t, "-config", path, "print")
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "first: Int = 25")

		code, _, stderr := runCommand(t, "-config", path, "validate", query)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "1 of 1 query files failed validation")

		code, out, _ = runCommand(t, "-config", path, "check")
		assert.Equal(t, 0, code)
		assert.Equal(t, "schema is valid\n", out)
	})

	t.Run("usage errors", func(t *testing.T) {
		code, out, stderr := runCommand(t)
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "missing command")
		assert.Contains(t, out, "validate")

		code, _, _ = runCommand(t, "-nope", "print")
		assert.Equal(t, 2, code)

		code, _, stderr = runCommand(t, "nope")
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, `unknown command "nope"`)
	})

	t.Run("help", func(t *testing.T) {
		code, out, _ := runCommand(t, "help")
		assert.Equal(t, 0, code)
		for _, name := range []string{"print", "introspect", "check", "validate", "serve"} {
			assert.Contains(t, out, name)
		}
	})

	t.Run("bad config", func(t *testing.T) {
		code, _, stderr := runCommand(t, "-config", filepath.Join(t.TempDir(), "absent.yaml"), "print")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "failed to load config")
	})
}
