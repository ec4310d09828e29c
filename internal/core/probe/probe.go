// 单IP探测引擎：先存活探测，再对目录表端口做 TCP Connect 扫描
// @author: sun977
package probe

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"neoprobe/internal/core/classifier"
)

const (
	DefaultPingTimeout  = 1 * time.Second
	DefaultPortTimeout  = 3 * time.Second
	DefaultPortParallel = 10
)

// Result 单IP一次完整探测的产出
type Result struct {
	IsOnline        bool
	PingTime        *int64         // 毫秒，离线时为空
	OpenPorts       map[int]string // 端口 -> 服务名
	VulnerablePorts map[int]string // 端口 -> 风险描述，仅含风险表收录的开放端口
	RawDetails      string         // ping 原始输出
}

// Dialer TCP 拨号接口，测试时可替换
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Engine 探测引擎
type Engine struct {
	pinger       Pinger
	dialer       Dialer
	pingTimeout  time.Duration
	portTimeout  time.Duration
	portParallel int
}

// Option 引擎配置项
type Option func(*Engine)

func WithPinger(p Pinger) Option {
	return func(e *Engine) { e.pinger = p }
}

func WithDialer(d Dialer) Option {
	return func(e *Engine) { e.dialer = d }
}

func WithPingTimeout(d time.Duration) Option {
	return func(e *Engine) { e.pingTimeout = d }
}

func WithPortTimeout(d time.Duration) Option {
	return func(e *Engine) { e.portTimeout = d }
}

func WithPortParallel(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.portParallel = n
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		pinger:       NewSystemPinger(),
		dialer:       &net.Dialer{},
		pingTimeout:  DefaultPingTimeout,
		portTimeout:  DefaultPortTimeout,
		portParallel: DefaultPortParallel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Probe 对单个IP执行 存活探测 -> 端口扫描 -> 风险归类
// 离线主机直接返回空端口表，不发起任何 TCP 连接
func (e *Engine) Probe(ctx context.Context, ip string) (*Result, error) {
	ping, err := e.pinger.Ping(ctx, ip, e.pingTimeout)
	if err != nil {
		return nil, fmt.Errorf("存活探测失败: %w", err)
	}

	result := &Result{
		IsOnline:        ping.Alive,
		OpenPorts:       make(map[int]string),
		VulnerablePorts: make(map[int]string),
		RawDetails:      ping.RawOutput,
	}
	if !ping.Alive {
		return result, nil
	}

	ms := ping.Latency.Milliseconds()
	result.PingTime = &ms

	open := e.scanPorts(ctx, ip)
	for _, port := range open {
		result.OpenPorts[port] = classifier.ServiceOf(port)
		if risk, ok := classifier.RiskOf(port); ok {
			result.VulnerablePorts[port] = risk
		}
	}
	return result, nil
}

// scanPorts 并发 TCP Connect 扫描目录表中的全部端口
func (e *Engine) scanPorts(ctx context.Context, ip string) []int {
	sem := make(chan struct{}, e.portParallel)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var open []int

	for port := range classifier.PortServices {
		wg.Add(1)
		sem <- struct{}{}
		go func(p int) {
			defer wg.Done()
			defer func() { <-sem }()

			if e.checkPort(ctx, ip, p) {
				mu.Lock()
				open = append(open, p)
				mu.Unlock()
			}
		}(port)
	}

	wg.Wait()
	return open
}

// checkPort 连接成功即认为端口开放，失败静默归为关闭
func (e *Engine) checkPort(ctx context.Context, ip string, port int) bool {
	address := fmt.Sprintf("%s:%d", ip, port)
	dialCtx, cancel := context.WithTimeout(ctx, e.portTimeout)
	defer cancel()

	conn, err := e.dialer.DialContext(dialCtx, "tcp", address)
	if err != nil {
		return false // 端口关闭 (或被过滤)
	}
	conn.Close()
	return true
}
