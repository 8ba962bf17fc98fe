package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDSN builds the DSN used in production. ClientFoundRows makes UPDATE
// report matched rows, so a no-op patch is not mistaken for a missing row.
func MySQLDSN(user, password, host, dbName string) string {
	mc := mysql.NewConfig()
	mc.User = user
	mc.Passwd = password
	mc.Net = "tcp"
	mc.Addr = host
	mc.DBName = dbName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

func OpenMySQL(ctx context.Context, user, password, host, dbName string) (*sql.DB, error) {
	conn, err := sql.Open("mysql", MySQLDSN(user, password, host, dbName))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open mysql: ping: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)
	return conn, nil
}
