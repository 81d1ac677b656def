package extractor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, dir string) {
	t.Helper()
	content := "# Policy\n\n" +
		"1 Regel (all secrets MUST be encrypted at rest)\n\n" +
		"- every deployment declares a resource quota for its namespace\n\n" +
		"3. all critical changes require two approvers\n\n" +
		"Owner: platform-security-team\n\n" +
		"```yaml\n" +
		"replicas: 3\n" +
		"allowed_hosts:\n" +
		"  - a.example.com\n" +
		"  - b.example.com\n" +
		"```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.md"), []byte(content), 0o644))
}

func TestExtract_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir)

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := New().WithClock(func() time.Time { return fixed })

	rs1, err := e.Extract(dir, "1.0.0")
	require.NoError(t, err)
	rs2, err := e.Extract(dir, "1.0.0")
	require.NoError(t, err)

	require.Equal(t, rs1.CanonicalHash, rs2.CanonicalHash)
	require.NotEmpty(t, rs1.Rules)
}

func TestExtract_CapturesStructuredAndProse(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir)

	rs, err := New().Extract(dir, "1.0.0")
	require.NoError(t, err)

	var sawYAMLField, sawYAMLList, sawTextReq, sawListItem, sawPolicyItem, sawKeyValue bool
	for _, r := range rs.Rules {
		switch r.Category {
		case "YAML_FIELD":
			sawYAMLField = true
		case "YAML_LIST":
			sawYAMLList = true
		case "TEXT_REQUIREMENT":
			sawTextReq = true
		case "LIST_ITEM":
			sawListItem = true
		case "POLICY_ITEM":
			sawPolicyItem = true
		case "KEY_VALUE":
			sawKeyValue = true
		}
	}
	require.True(t, sawYAMLField)
	require.True(t, sawYAMLList)
	require.True(t, sawTextReq)
	require.True(t, sawListItem)
	require.True(t, sawPolicyItem)
	require.True(t, sawKeyValue)
}

func TestExtract_UnreadableFileYieldsWarningNotFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"), []byte{0xff, 0xfe, 0xfd}, 0o644))

	rs, err := New().Extract(dir, "1.0.0")
	require.NoError(t, err)
	require.Len(t, rs.ExtractionWarnings, 1)
}

func TestDiff_AddedAndRemoved(t *testing.T) {
	dirOld := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirOld, "p.md"), []byte("1. rule alpha\n2. rule beta\n"), 0o644))
	dirNew := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirNew, "p.md"), []byte("1. rule alpha changed\n3. rule gamma\n"), 0o644))

	oldRS, err := New().Extract(dirOld, "1.0.0")
	require.NoError(t, err)
	newRS, err := New().Extract(dirNew, "1.1.0")
	require.NoError(t, err)

	d := Diff(oldRS, newRS)
	require.NotEmpty(t, d.Added)
	require.NotEmpty(t, d.Removed)
}
