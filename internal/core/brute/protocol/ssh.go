package protocol

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"neoprobe/internal/core/brute"

	"golang.org/x/crypto/ssh"
)

// SSHCracker 实现 SSH 协议爆破
type SSHCracker struct{}

func NewSSHCracker() *SSHCracker {
	return &SSHCracker{}
}

func (c *SSHCracker) Name() string {
	return "ssh"
}

// Check 验证 SSH 凭据
func (c *SSHCracker) Check(ctx context.Context, host string, port int, auth brute.Auth) (bool, error) {
	config := &ssh.ClientConfig{
		User: auth.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(auth.Password),
		},
		// 必须忽略 HostKey 检查，否则无法连接未知主机
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         3 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", host, port)

	// 先手动建立 TCP 连接，这样可以更好地控制超时和 Context 取消
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, c.handleError(err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(5 * time.Second)
	}
	conn.SetDeadline(deadline)

	// NewClientConn 会进行协议握手和认证
	cConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		return false, c.handleError(err)
	}
	defer cConn.Close()

	// 必须消费 chans 和 reqs，否则 goroutine 泄露
	go ssh.DiscardRequests(reqs)
	go func() {
		for newChannel := range chans {
			newChannel.Reject(ssh.Prohibited, "auth check does not allow channels")
		}
	}()

	return true, nil
}

// handleError 将底层错误转换为标准错误
func (c *SSHCracker) handleError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()

	// 认证失败通常包含 "unable to authenticate"
	if strings.Contains(msg, "unable to authenticate") {
		return nil // 认证失败不是系统错误，返回 (false, nil)
	}

	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "handshake failed") ||
		strings.Contains(msg, "target machine actively refused") { // Windows error message
		return brute.ErrConnectionFailed
	}

	return brute.ErrProtocolError
}
