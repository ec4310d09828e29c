package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"time"
)

// PingResult 存活探测结果
// RawOutput 保留 ping 命令原始输出，落库后供人工复核
type PingResult struct {
	Alive     bool
	Latency   time.Duration
	RawOutput string
}

// Pinger 存活探测接口，方便测试时替换实现
type Pinger interface {
	Ping(ctx context.Context, ip string, timeout time.Duration) (*PingResult, error)
}

// SystemPinger 调用系统 ping 命令的实现
// 为了避免 Raw Socket 权限问题，优先调用系统 ping 命令
// 这是一种 "Pragmatic" 的做法。
type SystemPinger struct{}

func NewSystemPinger() *SystemPinger {
	return &SystemPinger{}
}

func (p *SystemPinger) Ping(ctx context.Context, ip string, timeout time.Duration) (*PingResult, error) {
	var cmd *exec.Cmd
	var stdout bytes.Buffer

	if runtime.GOOS == "windows" {
		// -n 1: 发送1次
		// -w 1000: 超时1000ms (注意 Windows ping -w 单位是毫秒)
		timeoutMs := int(timeout.Milliseconds())
		if timeoutMs < 1 {
			timeoutMs = 1000
		}
		cmd = exec.CommandContext(ctx, "ping", "-n", "1", "-w", fmt.Sprint(timeoutMs), ip)
	} else {
		// Linux/Mac
		// -c 1: count 1
		// -W 1: timeout 1 second (Linux ping -W 单位通常是秒)
		timeoutSec := int(timeout.Seconds())
		if timeoutSec < 1 {
			timeoutSec = 1
		}
		cmd = exec.CommandContext(ctx, "ping", "-c", "1", "-W", fmt.Sprint(timeoutSec), ip)
	}

	cmd.Stdout = &stdout
	err := cmd.Run()
	output := stdout.String()
	if err != nil {
		// 不通也是正常结论，不作为错误上抛
		return &PingResult{Alive: false, RawOutput: output}, nil
	}

	latency := parsePingLatency(output, runtime.GOOS)
	return &PingResult{Alive: true, Latency: latency, RawOutput: output}, nil
}

func parsePingLatency(output string, osType string) time.Duration {
	var re *regexp.Regexp
	if osType == "windows" {
		// Windows: "Reply from 1.1.1.1: bytes=32 time=13ms TTL=56"
		// 兼容中文: "来自 127.0.0.1 的回复: 字节=32 时间<1ms TTL=128"
		re = regexp.MustCompile(`[<>=]([\d\.]+) ?ms`)
	} else {
		// Linux: "64 bytes from 1.1.1.1: icmp_seq=1 ttl=56 time=13.5 ms"
		re = regexp.MustCompile(`time=([\d\.]+) ms`)
	}

	if matches := re.FindStringSubmatch(output); len(matches) > 1 {
		if ms, err := strconv.ParseFloat(matches[1], 64); err == nil {
			return time.Duration(ms * float64(time.Millisecond))
		}
	}
	return 0
}
