// 包 store: PostgreSQL 检索后端，实现 spotlight.Index
package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"counties/internal/logger"
	"counties/internal/spotlight"
	"counties/internal/textfold"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// SearchText: 标题与描述的折叠文本（小写、去变音符），作为 LIKE 预筛选的对象
func SearchText(it spotlight.Item) string {
	return textfold.Fold(it.Title) + "\n" + textfold.Fold(it.Description)
}

// 文档注释：写入检索条目
// 背景：单事务逐条 upsert；已存在的条目保留原 ordinal，因此结果顺序始终为首次写入顺序。
func (s *Store) IndexItems(ctx context.Context, items []spotlight.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _county_search_items(id, title, description, search_text, latitude, longitude, thumbnail, supports_navigation)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description, search_text=EXCLUDED.search_text,
            latitude=EXCLUDED.latitude, longitude=EXCLUDED.longitude, thumbnail=EXCLUDED.thumbnail,
            supports_navigation=EXCLUDED.supports_navigation, updated_at=now()`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.ID, it.Title, it.Description, SearchText(it), it.Latitude, it.Longitude, it.Thumbnail, it.SupportsNavigation); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Debug("db_search_items_upserted", "count", len(items))
	return nil
}

// 文档注释：检索
// 背景：先以 LIKE 在 search_text 上预筛选（每个查询词一个条件），再用查询语义逐行精确匹配；
// 结果按 ordinal 顺序，每 spotlight.BatchSize 条回调一次。
func (s *Store) Search(ctx context.Context, query string, found func([]string)) error {
	cl, err := spotlight.ParseQuery(query)
	if err != nil {
		return err
	}
	where, args := likeClauses(cl)
	q := `SELECT id, title, description FROM _county_search_items`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY ordinal`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	batch := make([]string, 0, spotlight.BatchSize)
	for rows.Next() {
		var it spotlight.Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Description); err != nil {
			return err
		}
		if !cl.MatchItem(it) {
			continue
		}
		batch = append(batch, it.ID)
		if len(batch) == spotlight.BatchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			found(batch)
			batch = make([]string, 0, spotlight.BatchSize)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		found(batch)
	}
	return nil
}

// Count: 已写入条目数
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM _county_search_items`).Scan(&n)
	return n, err
}

// likeClauses: 每个模式生成一个 search_text LIKE $n 条件
func likeClauses(cl spotlight.Clause) (string, []any) {
	var conds []string
	var args []any
	for _, p := range cl.Patterns() {
		lp := likePattern(textfold.Fold(p))
		if lp == "%" {
			continue
		}
		args = append(args, lp)
		conds = append(conds, "search_text LIKE $"+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " AND "), args
}

// likePattern: 转义 % _ \，* 转为 %，两端补 %；连续通配合并为一个
func likePattern(p string) string {
	var b strings.Builder
	b.WriteByte('%')
	wild := true
	for _, r := range p {
		switch r {
		case '*':
			if !wild {
				b.WriteByte('%')
				wild = true
			}
			continue
		case '%', '_', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
		wild = false
	}
	if !wild {
		b.WriteByte('%')
	}
	return b.String()
}
