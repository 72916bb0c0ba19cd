package plugins

import "github.com/kilianp07/predsubmit/infra/journal"

func init() {
	RegisterJournal("jsonl", func(cfg journal.Config) (journal.Store, error) {
		return journal.NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	})
	RegisterJournal("sqlite", func(cfg journal.Config) (journal.Store, error) {
		return journal.NewSQLiteStore(cfg.Path)
	})
}
