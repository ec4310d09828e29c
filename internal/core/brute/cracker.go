package brute

import (
	"context"
	"errors"
)

// Auth 认证凭据 (数据传输对象)
type Auth struct {
	Username string
	Password string
}

// Cracker 协议适配器接口
type Cracker interface {
	// Name 返回协议名称 (e.g. "ssh", "mysql")
	Name() string

	// Check 验证单个凭据
	// context: 用于控制超时 (通常 3-5秒)
	// 返回:
	// - bool: true 表示认证成功
	// - error: 见下方错误定义
	Check(ctx context.Context, host string, port int, auth Auth) (bool, error)
}

var (
	// ErrAuthFailed 认证失败 (账号密码错误) -> 继续尝试下一个
	// 实现 Check 时，如果确定是密码错误，返回 (false, nil) 即可，也可以返回此 error 用于日志
	ErrAuthFailed = errors.New("auth failed")

	// ErrConnectionFailed 连接失败 (超时/拒绝/重置) -> 跳过该凭据
	ErrConnectionFailed = errors.New("connection failed")

	// ErrProtocolError 协议交互错误 (如非预期响应) -> 视为该协议不支持，跳过
	ErrProtocolError = errors.New("protocol error")

	// ErrCapabilityUnavailable 目标服务需要爆破但没有注册对应的 Cracker
	// 上层收到此错误应将会话判定为失败，而不是静默跳过
	ErrCapabilityUnavailable = errors.New("cracker capability unavailable")
)
