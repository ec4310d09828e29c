package protocol

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"neoprobe/internal/core/brute"

	"github.com/ziutek/telnet"
)

// TelnetCracker Telnet 协议爆破器
//
// 检测原理:
//  1. 状态机交互: 建立 TCP 连接后依次处理 "用户名提示" -> "发送用户名" -> "密码提示" -> "发送密码" -> "结果判定"。
//  2. 正则匹配: 灵活匹配各种设备的登录提示符 (如 "Login:", "User Name:", "Password:" 等)。
//  3. 结果判定:
//     - 成功: 匹配到 Shell 提示符 (如 "# ", "$ ", "> ")，表明已获得交互权限。
//     - 失败: 匹配到明确的失败关键词，或再次出现 "Login:" 提示。
//  4. 超时控制: 每一步读取操作都有严格的超时限制，防止被非标准设备挂起。
type TelnetCracker struct {
	reLogin    *regexp.Regexp
	rePassword *regexp.Regexp
	reShell    *regexp.Regexp
	reFail     *regexp.Regexp
}

func NewTelnetCracker() *TelnetCracker {
	return &TelnetCracker{
		// login:, Login:, User Name:, Username:, user:
		reLogin: regexp.MustCompile(`(?i)(login|user\s*name|username|user)[\s:]*$`),
		// Password:, password:, Pass:, pass:
		rePassword: regexp.MustCompile(`(?i)(password|pass)[\s:]*$`),
		// Shell 提示符 (登录成功标志)
		reShell: regexp.MustCompile(`[#$>%]\s*$`),
		// Login incorrect, Login failed, Access denied, Bad password
		reFail: regexp.MustCompile(`(?i)(incorrect|failed|denied|bad|invalid)`),
	}
}

func (c *TelnetCracker) Name() string {
	return "telnet"
}

func (c *TelnetCracker) Check(ctx context.Context, host string, port int, auth brute.Auth) (bool, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	// ziutek/telnet 主要依赖 SetReadDeadline 控制超时，连接超时受 ctx 剩余时间约束
	dialTimeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		dialTimeout = time.Until(deadline)
		if dialTimeout <= 0 {
			return false, brute.ErrConnectionFailed
		}
	}

	conn, err := telnet.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return false, brute.ErrConnectionFailed
	}
	defer conn.Close()

	// 每一步交互的超时，太短容易漏掉慢设备
	stepTimeout := 3 * time.Second
	conn.SetReadDeadline(time.Now().Add(stepTimeout))
	conn.SetWriteDeadline(time.Now().Add(stepTimeout))

	// Stage 1: 等待登录提示符 (有些设备只要密码)
	data, err := c.readUntilMatch(conn, c.reLogin, c.rePassword)
	if err != nil {
		// 读不到提示符，可能是非 Telnet 服务
		return false, brute.ErrConnectionFailed
	}

	if !c.rePassword.Match(data) {
		// 匹配到了 Login 提示符，发送用户名
		if err1 := c.sendLine(conn, auth.Username); err1 != nil {
			return false, brute.ErrConnectionFailed
		}

		// Stage 2: 等待密码提示符
		conn.SetReadDeadline(time.Now().Add(stepTimeout))
		if _, err = c.readUntilMatch(conn, c.rePassword); err != nil {
			// 发送用户名后没等到密码提示，简单处理为失败
			return false, nil
		}
	}

	// Stage 3: 发送密码
	if err1 := c.sendLine(conn, auth.Password); err1 != nil {
		return false, brute.ErrConnectionFailed
	}

	// Stage 4: 判定结果
	conn.SetReadDeadline(time.Now().Add(stepTimeout))
	success, err := c.checkResult(conn)
	if err != nil {
		// 超时且未匹配到任何特征，认为失败
		return false, nil
	}
	return success, nil
}

// readUntilMatch 读取数据直到匹配任意一个正则，或者超时
func (c *TelnetCracker) readUntilMatch(conn *telnet.Conn, regexps ...*regexp.Regexp) ([]byte, error) {
	var buf []byte
	b := make([]byte, 1)

	for {
		n, err := conn.Read(b)
		if n > 0 {
			buf = append(buf, b[0])
			for _, re := range regexps {
				if re.Match(buf) {
					return buf, nil
				}
			}
		}
		if err != nil {
			return buf, err
		}
	}
}

// sendLine 发送一行数据 (自动追加 \r\n)
func (c *TelnetCracker) sendLine(conn *telnet.Conn, msg string) error {
	_, err := conn.Write([]byte(msg + "\r\n"))
	return err
}

// checkResult 读取后续数据并判定结果
func (c *TelnetCracker) checkResult(conn *telnet.Conn) (bool, error) {
	var buf []byte
	b := make([]byte, 256)

	for {
		n, err := conn.Read(b)
		if n > 0 {
			buf = append(buf, b[:n]...)

			if c.reFail.Match(buf) {
				return false, nil // 明确失败
			}
			// 再次出现 Login 也是失败
			if c.reLogin.Match(buf) {
				return false, nil
			}
			if c.reShell.Match(buf) {
				return true, nil
			}
		}
		if err != nil {
			return false, err
		}
	}
}
