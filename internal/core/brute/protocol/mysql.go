package protocol

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"neoprobe/internal/core/brute"

	"github.com/go-sql-driver/mysql"
)

// MySQLCracker 实现 MySQL 协议爆破
type MySQLCracker struct{}

func NewMySQLCracker() *MySQLCracker {
	return &MySQLCracker{}
}

func (c *MySQLCracker) Name() string {
	return "mysql"
}

// Check 验证 MySQL 凭据
func (c *MySQLCracker) Check(ctx context.Context, host string, port int, auth brute.Auth) (bool, error) {
	// 不指定 dbname，连接默认库
	// timeout/readTimeout 控制 TCP 层快速失败
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/?timeout=3s&readTimeout=3s",
		auth.Username, auth.Password, host, port)

	// sql.Open 不会真正连接，Ping 才会
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return false, c.handleError(err)
	}
	defer db.Close()

	db.SetConnMaxLifetime(time.Second * 5)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	if err := db.PingContext(ctx); err != nil {
		return false, c.handleError(err)
	}
	return true, nil
}

// handleError 将底层错误转换为标准错误
func (c *MySQLCracker) handleError(err error) error {
	if err == nil {
		return nil
	}

	if driverErr, ok := err.(*mysql.MySQLError); ok {
		switch driverErr.Number {
		case 1045, 1044: // Access denied
			return nil // 认证失败，不是连接错误
		}
	}

	msg := strings.ToLower(err.Error())

	// 文本匹配兜底
	if strings.Contains(msg, "access denied") {
		return nil
	}

	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "bad connection") ||
		strings.Contains(msg, "target machine actively refused") || // Windows
		err == mysql.ErrInvalidConn {
		return brute.ErrConnectionFailed
	}

	return brute.ErrProtocolError
}
