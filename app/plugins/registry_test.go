package plugins

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/predsubmit/infra/journal"
)

func TestOpenJournalBuiltins(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"jsonl", "sqlite"} {
		store, err := OpenJournal(journal.Config{Backend: backend, Path: filepath.Join(dir, "runs."+backend)})
		require.NoError(t, err, backend)
		require.NoError(t, store.Close())
	}
}

func TestOpenJournalUnknown(t *testing.T) {
	_, err := OpenJournal(journal.Config{Backend: "csv", Path: "x"})
	require.Error(t, err)
}
