package protocol

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"neoprobe/internal/core/brute"

	"github.com/lib/pq"
)

// PostgresCracker PostgreSQL 协议爆破器
type PostgresCracker struct{}

func NewPostgresCracker() *PostgresCracker {
	return &PostgresCracker{}
}

func (c *PostgresCracker) Name() string {
	return "postgresql"
}

func (c *PostgresCracker) Check(ctx context.Context, host string, port int, auth brute.Auth) (bool, error) {
	// sslmode=disable 禁用 SSL，提高速度并兼容旧版
	// connect_timeout 控制连接建立超时
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/postgres?sslmode=disable&connect_timeout=3",
		auth.Username, auth.Password, host, port)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return false, fmt.Errorf("invalid dsn: %w", err)
	}
	defer db.Close()

	// 关键：PingContext 才会真正建立连接
	if err := db.PingContext(ctx); err != nil {
		return c.handleError(err)
	}
	return true, nil
}

// handleError 解析 PostgreSQL 错误
func (c *PostgresCracker) handleError(err error) (bool, error) {
	if err == nil {
		return true, nil
	}

	if pqErr, ok := err.(*pq.Error); ok {
		// PostgreSQL Error Codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
		switch pqErr.Code {
		case "28P01": // invalid_password
			return false, nil
		case "28000": // invalid_authorization_specification
			return false, nil
		case "53300": // too_many_connections
			return false, brute.ErrConnectionFailed
		}
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") {
		return false, brute.ErrConnectionFailed
	}

	return false, err
}
