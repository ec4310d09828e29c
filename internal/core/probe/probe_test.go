package probe

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"neoprobe/internal/core/classifier"
)

// stubPinger 固定返回预设结论
type stubPinger struct {
	alive   bool
	latency time.Duration
	raw     string
}

func (s *stubPinger) Ping(_ context.Context, _ string, _ time.Duration) (*PingResult, error) {
	return &PingResult{Alive: s.alive, Latency: s.latency, RawOutput: s.raw}, nil
}

// onlyPortDialer 仅对指定端口放行，其余拒绝
type onlyPortDialer struct {
	port int
	real net.Dialer
	addr string
}

func (d *onlyPortDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	if p, _ := strconv.Atoi(portStr); p == d.port {
		return d.real.DialContext(ctx, network, d.addr)
	}
	return nil, &net.OpError{Op: "dial", Err: context.DeadlineExceeded}
}

// 离线主机不应发起端口扫描，结果为空端口表
func TestProbeOfflineHost(t *testing.T) {
	e := NewEngine(WithPinger(&stubPinger{alive: false, raw: "Request timed out."}))

	result, err := e.Probe(context.Background(), "192.0.2.1")
	if err != nil {
		t.Fatalf("Probe 不应报错: %v", err)
	}
	if result.IsOnline {
		t.Error("主机应判定为离线")
	}
	if result.PingTime != nil {
		t.Error("离线主机不应有延迟数据")
	}
	if len(result.OpenPorts) != 0 || len(result.VulnerablePorts) != 0 {
		t.Error("离线主机端口表应为空")
	}
	if !strings.Contains(result.RawDetails, "timed out") {
		t.Error("原始输出应被保留")
	}
}

// 在线主机对真实监听端口应识别为开放
func TestProbeOnlineHostPortScan(t *testing.T) {
	// 本地起一个监听器冒充 SSH 端口
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("监听失败: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	e := NewEngine(
		WithPinger(&stubPinger{alive: true, latency: 12 * time.Millisecond, raw: "64 bytes from 127.0.0.1: icmp_seq=1 ttl=64 time=12.0 ms"}),
		WithDialer(&onlyPortDialer{port: 22, addr: ln.Addr().String()}),
		WithPortTimeout(500*time.Millisecond),
	)

	result, err := e.Probe(context.Background(), "127.0.0.1")
	if err != nil {
		t.Fatalf("Probe 失败: %v", err)
	}
	if !result.IsOnline {
		t.Fatal("主机应判定为在线")
	}
	if result.PingTime == nil || *result.PingTime != 12 {
		t.Errorf("延迟应为12ms, got %v", result.PingTime)
	}
	if svc, ok := result.OpenPorts[22]; !ok || svc != "SSH" {
		t.Errorf("22端口应开放且识别为SSH, got %v", result.OpenPorts)
	}
	// SSH 在风险描述表中，风险清单存描述原文而不是服务名
	if risk, ok := result.VulnerablePorts[22]; !ok || risk != classifier.PortRisks[22] {
		t.Errorf("22端口应以风险描述进入风险清单, got %q", risk)
	}
	if len(result.OpenPorts) != 1 {
		t.Errorf("仅22端口开放, got %v", result.OpenPorts)
	}
}

// 开放但不在风险描述表中的端口不应进入风险清单
func TestProbeOpenPortWithoutRiskEntry(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("监听失败: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	// 110 (POP3) 在目录表和中危档里，但风险描述表未收录
	e := NewEngine(
		WithPinger(&stubPinger{alive: true, latency: 5 * time.Millisecond, raw: "time=5.0 ms"}),
		WithDialer(&onlyPortDialer{port: 110, addr: ln.Addr().String()}),
		WithPortTimeout(500*time.Millisecond),
	)

	result, err := e.Probe(context.Background(), "127.0.0.1")
	if err != nil {
		t.Fatalf("Probe 失败: %v", err)
	}
	if svc, ok := result.OpenPorts[110]; !ok || svc != "POP3" {
		t.Errorf("110端口应开放且识别为POP3, got %v", result.OpenPorts)
	}
	if v, ok := result.VulnerablePorts[110]; ok {
		t.Errorf("110端口不在风险描述表中，不应进入风险清单, got %q", v)
	}
}

func TestParsePingLatency(t *testing.T) {
	tests := []struct {
		name   string
		output string
		osType string
		want   time.Duration
	}{
		{"Linux标准输出", "64 bytes from 1.1.1.1: icmp_seq=1 ttl=56 time=13.5 ms", "linux", 13500 * time.Microsecond},
		{"Windows英文输出", "Reply from 1.1.1.1: bytes=32 time=13ms TTL=56", "windows", 13 * time.Millisecond},
		{"Windows中文输出", "来自 127.0.0.1 的回复: 字节=32 时间<1ms TTL=128", "windows", 1 * time.Millisecond},
		{"无法解析返回零值", "garbage", "linux", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parsePingLatency(tt.output, tt.osType); got != tt.want {
				t.Errorf("parsePingLatency() = %v, want %v", got, tt.want)
			}
		})
	}
}
