package plugins

import (
	"fmt"

	"github.com/kilianp07/predsubmit/infra/journal"
)

// JournalFactory opens a run journal store from its configuration.
type JournalFactory func(cfg journal.Config) (journal.Store, error)

var JournalStores = map[string]JournalFactory{}

func RegisterJournal(name string, f JournalFactory) { JournalStores[name] = f }

// OpenJournal builds the store selected by cfg.Backend.
func OpenJournal(cfg journal.Config) (journal.Store, error) {
	f, ok := JournalStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown journal backend %s", cfg.Backend)
	}
	return f(cfg)
}
