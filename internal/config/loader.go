package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configPath string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
func NewConfigLoader(configPath, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = "NEOPROBE"
	}

	return &ConfigLoader{
		configPath: configPath,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// LoadConfig 加载配置
// 优先级: 环境变量 > 配置文件 > 默认值
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	cl.viper.SetConfigType("yaml")

	// 设置环境变量前缀
	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.AutomaticEnv()
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值
	cl.setDefaults()

	// 加载配置文件
	if err := cl.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// 解析配置
	var config Config
	if err := cl.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadConfigFile 加载配置文件
func (cl *ConfigLoader) loadConfigFile() error {
	if cl.configPath == "" {
		if envPath := os.Getenv("NEOPROBE_CONFIG_PATH"); envPath != "" {
			cl.configPath = envPath
		} else {
			cl.configPath = "./configs"
		}
	}

	cl.viper.AddConfigPath(cl.configPath)
	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath(".")

	cl.viper.SetConfigName("config")
	if err := cl.viper.ReadInConfig(); err != nil {
		// 配置文件缺失时允许使用默认值启动 (CLI 单机模式不依赖配置文件)
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// setDefaults 设置各项默认值
// 默认超时与原始扫描策略一致: ping 1s / 端口 3s / 单次任务 300s
func (cl *ConfigLoader) setDefaults() {
	cl.viper.SetDefault("app.name", "neoprobe")
	cl.viper.SetDefault("app.version", "1.0.0")
	cl.viper.SetDefault("app.environment", "production")
	cl.viper.SetDefault("app.debug", false)

	cl.viper.SetDefault("server.host", "0.0.0.0")
	cl.viper.SetDefault("server.port", 8080)
	cl.viper.SetDefault("server.mode", "release")
	cl.viper.SetDefault("server.read_timeout", "30s")
	cl.viper.SetDefault("server.write_timeout", "30s")

	cl.viper.SetDefault("log.level", "info")
	cl.viper.SetDefault("log.format", "json")
	cl.viper.SetDefault("log.output", "stdout")
	cl.viper.SetDefault("log.max_size", 100)
	cl.viper.SetDefault("log.max_backups", 10)
	cl.viper.SetDefault("log.max_age", 30)

	cl.viper.SetDefault("database.host", "127.0.0.1")
	cl.viper.SetDefault("database.port", 3306)
	cl.viper.SetDefault("database.charset", "utf8mb4")
	cl.viper.SetDefault("database.log_level", "warn")
	cl.viper.SetDefault("database.max_idle_conns", 10)
	cl.viper.SetDefault("database.max_open_conns", 100)
	cl.viper.SetDefault("database.conn_max_lifetime", "1h")

	cl.viper.SetDefault("redis.enabled", false)
	cl.viper.SetDefault("redis.host", "127.0.0.1")
	cl.viper.SetDefault("redis.port", 6379)
	cl.viper.SetDefault("redis.pool_size", 10)
	cl.viper.SetDefault("redis.cache_ttl", "5s")

	cl.viper.SetDefault("scanner.workers", 10)
	cl.viper.SetDefault("scanner.queue_size", 1024)
	cl.viper.SetDefault("scanner.max_attempts", 3)
	cl.viper.SetDefault("scanner.task_timeout", "300s")
	cl.viper.SetDefault("scanner.ping_timeout", "1s")
	cl.viper.SetDefault("scanner.port_timeout", "3s")
	cl.viper.SetDefault("scanner.port_parallel", 10)

	cl.viper.SetDefault("pentest.detect_timeout", "3s")
	cl.viper.SetDefault("pentest.auth_timeout", "3s")
	cl.viper.SetDefault("pentest.http_timeout", "10s")
}
