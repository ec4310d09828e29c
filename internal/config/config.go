/**
 * 配置管理
 * @author: sun977
 * @description: neoprobe 配置定义，负责承载所有运行参数
 */
package config

import (
	"fmt"
	"time"
)

// Config 全局配置
type Config struct {
	// 应用配置
	App *AppConfig `yaml:"app" mapstructure:"app"`

	// API服务器配置
	Server *ServerConfig `yaml:"server" mapstructure:"server"`

	// 日志配置
	Log *LogConfig `yaml:"log" mapstructure:"log"`

	// 数据库配置
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Redis配置 (可选, 用于批次状态缓存)
	Redis *RedisConfig `yaml:"redis" mapstructure:"redis"`

	// 扫描器配置
	Scanner *ScannerConfig `yaml:"scanner" mapstructure:"scanner"`

	// 渗透测试配置
	Pentest *PentestConfig `yaml:"pentest" mapstructure:"pentest"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Version     string `yaml:"version" mapstructure:"version"`         // 应用版本
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
	Debug       bool   `yaml:"debug" mapstructure:"debug"`             // 调试模式
}

// ServerConfig API服务器配置
type ServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`                   // 监听地址
	Port         int           `yaml:"port" mapstructure:"port"`                   // 监听端口
	Mode         string        `yaml:"mode" mapstructure:"mode"`                   // 运行模式 (debug/release/test)
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`   // 读取超时时间
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"` // 写入超时时间
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别 (debug/info/warn/error)
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式 (json/text)
	Output     string `yaml:"output" mapstructure:"output"`           // 日志输出 (stdout/stderr/file)
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 最大文件大小（MB）
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 最大备份数
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 最大保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// DatabaseConfig 数据库配置 (MySQL)
type DatabaseConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`                           // 主机地址
	Port            int           `yaml:"port" mapstructure:"port"`                           // 端口
	Username        string        `yaml:"username" mapstructure:"username"`                   // 用户名
	Password        string        `yaml:"password" mapstructure:"password"`                   // 密码
	Database        string        `yaml:"database" mapstructure:"database"`                   // 数据库名
	Charset         string        `yaml:"charset" mapstructure:"charset"`                     // 字符集
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`                 // GORM日志级别
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`       // 最大空闲连接数
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`       // 最大打开连接数
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"` // 连接最大生存时间
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`     // 是否启用缓存
	Host     string        `yaml:"host" mapstructure:"host"`           // 主机地址
	Port     int           `yaml:"port" mapstructure:"port"`           // 端口
	Password string        `yaml:"password" mapstructure:"password"`   // 密码
	Database int           `yaml:"database" mapstructure:"database"`   // DB编号
	PoolSize int           `yaml:"pool_size" mapstructure:"pool_size"` // 连接池大小
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"` // 状态缓存TTL
}

// ScannerConfig 扫描器配置
// 超时均为单次尝试粒度，没有全局截止时间
type ScannerConfig struct {
	Workers      int           `yaml:"workers" mapstructure:"workers"`             // worker池大小
	QueueSize    int           `yaml:"queue_size" mapstructure:"queue_size"`       // 任务队列容量
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"`   // 单任务最大尝试次数
	TaskTimeout  time.Duration `yaml:"task_timeout" mapstructure:"task_timeout"`   // 单次尝试超时
	PingTimeout  time.Duration `yaml:"ping_timeout" mapstructure:"ping_timeout"`   // 存活探测超时
	PortTimeout  time.Duration `yaml:"port_timeout" mapstructure:"port_timeout"`   // 单端口连接超时
	PortParallel int           `yaml:"port_parallel" mapstructure:"port_parallel"` // 端口探测并发度
}

// PentestConfig 渗透测试配置
type PentestConfig struct {
	DetectTimeout time.Duration `yaml:"detect_timeout" mapstructure:"detect_timeout"` // 服务探测单端口超时
	AuthTimeout   time.Duration `yaml:"auth_timeout" mapstructure:"auth_timeout"`     // 单次认证尝试超时
	HTTPTimeout   time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`     // Web探测HTTP超时
}

// Validate 校验配置的基本合法性
func (c *Config) Validate() error {
	if c.App == nil || c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Server != nil {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d", c.Server.Port)
		}
	}
	if c.Log != nil {
		switch c.Log.Format {
		case "", "json", "text":
		default:
			return fmt.Errorf("unsupported log format: %s", c.Log.Format)
		}
	}
	if c.Scanner != nil {
		if c.Scanner.Workers <= 0 {
			return fmt.Errorf("scanner.workers must be positive")
		}
		if c.Scanner.MaxAttempts <= 0 {
			return fmt.Errorf("scanner.max_attempts must be positive")
		}
	}
	return nil
}
