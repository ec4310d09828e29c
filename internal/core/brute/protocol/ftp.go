package protocol

import (
	"context"
	"fmt"
	"time"

	"neoprobe/internal/core/brute"

	"github.com/jlaffaye/ftp"
)

// FTPCracker FTP 协议爆破器
type FTPCracker struct{}

func NewFTPCracker() *FTPCracker {
	return &FTPCracker{}
}

func (c *FTPCracker) Name() string {
	return "ftp"
}

func (c *FTPCracker) Check(ctx context.Context, host string, port int, auth brute.Auth) (bool, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	// ftp 库不支持 ctx，连接超时受 ctx 剩余时间约束
	dialTimeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		dialTimeout = time.Until(deadline)
		if dialTimeout <= 0 {
			return false, brute.ErrConnectionFailed
		}
	}

	conn, err := ftp.DialTimeout(addr, dialTimeout)
	if err != nil {
		return false, brute.ErrConnectionFailed
	}
	defer conn.Quit()

	if err := conn.Login(auth.Username, auth.Password); err != nil {
		return c.handleError(err)
	}

	conn.Logout()
	return true, nil
}

// handleError 解析 FTP 错误
func (c *FTPCracker) handleError(err error) (bool, error) {
	if err == nil {
		return true, nil
	}

	errMsg := err.Error()

	// 530 Login incorrect. / 530 Not logged in.
	if len(errMsg) >= 3 && errMsg[:3] == "530" {
		return false, nil // 密码错误
	}

	// 421 Service not available / Too many connections
	if len(errMsg) >= 3 && errMsg[:3] == "421" {
		return false, brute.ErrConnectionFailed
	}

	if len(errMsg) >= 3 && errMsg[:3] == "EOF" {
		return false, brute.ErrConnectionFailed
	}

	return false, err
}
