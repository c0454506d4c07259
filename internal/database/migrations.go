package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by the list pages
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Issue list order
		{"issue", "idx_issue_project_priority_open", "project, priority, open_date"},

		// Comments per issue, newest first
		{"comment", "idx_comment_issue_posted", "issue_id, posted_date"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists", slog.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			slog.String("index", idx.name),
			slog.String("table", idx.table),
			slog.String("columns", idx.columns),
		)
	}

	return nil
}
