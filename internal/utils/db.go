// 包 utils：Postgres / Redis / TLS 与环境变量读取的公共工具
package utils

import (
	"database/sql"
	"net/url"

	_ "github.com/lib/pq"
)

// BuildPostgresDSNFromEnv：由 PG_* 变量拼出连接串
// 约束：用户名与密码做 URL 转义；未配置的项使用本地开发默认值
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     EnvString("PG_HOST", "localhost") + ":" + EnvString("PG_PORT", "5432"),
		Path:     "/" + EnvString("PG_DB", "counties"),
		RawQuery: "sslmode=" + url.QueryEscape(EnvString("PG_SSLMODE", "disable")),
	}
	user := EnvString("PG_USER", "postgres")
	if pass := EnvString("PG_PASSWORD", ""); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// OpenPostgres：打开连接池，maxOpen/maxIdle 为 0 时不设上限
func OpenPostgres(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, nil
}

// OpenPostgresFromEnv：PG_MAX_OPEN_CONNS 默认 10，PG_MAX_IDLE_CONNS 默认 5
func OpenPostgresFromEnv() (*sql.DB, error) {
	return OpenPostgres(BuildPostgresDSNFromEnv(), EnvInt("PG_MAX_OPEN_CONNS", 10), EnvInt("PG_MAX_IDLE_CONNS", 5))
}
