package migrate

import (
	"database/sql"

	"counties/internal/logger"
)

// 背景：首次运行自动创建检索表与索引，search-index 工具与服务启动时都会调用
// 约束：使用 IF NOT EXISTS，可重复执行
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _county_search_items (
            id TEXT PRIMARY KEY,
            ordinal BIGSERIAL NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            search_text TEXT NOT NULL,
            latitude DOUBLE PRECISION NOT NULL,
            longitude DOUBLE PRECISION NOT NULL,
            thumbnail BYTEA,
            supports_navigation BOOLEAN NOT NULL DEFAULT TRUE,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_county_search_ordinal ON _county_search_items(ordinal)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
