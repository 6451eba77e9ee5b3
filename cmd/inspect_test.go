package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"safenest/internal/domain/entity"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() {
		flagNotes, flagJSON, flagConcurrency = "", false, 0
		flagConfig, flagLogLevel = "", ""
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func writeImages(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	var paths []string
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("photo of "+name), 0o600))
		paths = append(paths, p)
	}
	return paths
}

func TestInspectCommand_JSON(t *testing.T) {
	paths := writeImages(t, "kitchen.png", "attic.png", "porch.jpg")

	out := runCLI(t, append([]string{"inspect", "--json", "--log-level", "error"}, paths...)...)

	var report entity.InspectionReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 1, report.RejectedImages)
	require.GreaterOrEqual(t, report.TotalDefects, 5)
	require.NotEmpty(t, report.Recommendations)
}

func TestInspectCommand_Table(t *testing.T) {
	paths := writeImages(t, "basement.png")

	out := runCLI(t, append([]string{"inspect", "--notes", "damp walls", "--log-level", "error"}, paths...)...)

	require.Contains(t, out, "Risk score:")
	require.Contains(t, strings.ToLower(out), "severity")
	require.Contains(t, out, "basement.png")
	require.Contains(t, out, "Overall risk:")
}

func TestReadImages_MissingFile(t *testing.T) {
	_, err := readImages([]string{filepath.Join(t.TempDir(), "absent.png")})
	require.Error(t, err)
}
