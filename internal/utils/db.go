package utils

import (
	"database/sql"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// PGParams PostgreSQL 连接参数；零值字段在 DSN 中取默认值
type PGParams struct {
	Host, Port     string
	User, Password string
	DB, SSLMode    string
}

// pgDefaults 标注与统计表所在库的默认连接参数
var pgDefaults = PGParams{Host: "localhost", Port: "5432", User: "postgres", DB: "dotglobe", SSLMode: "disable"}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// PGParamsFromEnv 读取 PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE
func PGParamsFromEnv() PGParams {
	return PGParams{
		Host:     os.Getenv("PG_HOST"),
		Port:     os.Getenv("PG_PORT"),
		User:     os.Getenv("PG_USER"),
		Password: os.Getenv("PG_PASSWORD"),
		DB:       os.Getenv("PG_DB"),
		SSLMode:  os.Getenv("PG_SSLMODE"),
	}
}

// DSN URL 形式；用户名与密码按 userinfo 转义（密码可含 @ : / 等字符）
func (p PGParams) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(orDefault(p.Host, pgDefaults.Host), orDefault(p.Port, pgDefaults.Port)),
		Path:     "/" + orDefault(p.DB, pgDefaults.DB),
		RawQuery: url.Values{"sslmode": {orDefault(p.SSLMode, pgDefaults.SSLMode)}}.Encode(),
	}
	user := orDefault(p.User, pgDefaults.User)
	if p.Password != "" {
		u.User = url.UserPassword(user, p.Password)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// OpenPostgres 打开连接池；连接存活上限 30 分钟，避免长连接穿过会重置的代理
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func BuildPostgresDSNFromEnv() string { return PGParamsFromEnv().DSN() }

// OpenPostgresFromEnv：标注表的读写量很小，连接池默认 10/5，可用 PG_MAX_OPEN_CONNS/PG_MAX_IDLE_CONNS 覆盖
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := OpenPostgres(BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	if n, e := strconv.Atoi(os.Getenv("PG_MAX_OPEN_CONNS")); e == nil && n > 0 {
		db.SetMaxOpenConns(n)
	}
	if n, e := strconv.Atoi(os.Getenv("PG_MAX_IDLE_CONNS")); e == nil && n >= 0 {
		db.SetMaxIdleConns(n)
	}
	return db, nil
}
