// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Log           LogConfig           `mapstructure:"log"`
	Session       SessionConfig       `mapstructure:"session"`
	ModelServer   ModelServerConfig   `mapstructure:"model_server"`
	Router        RouterConfig        `mapstructure:"router"`
	Personalize   PersonalizeConfig   `mapstructure:"personalize"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// SessionConfig 存储会话令牌相关的配置。
type SessionConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ModelServerConfig 存储本地推理服务相关的配置。
type ModelServerConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	StatusURL          string `mapstructure:"status_url"`
	APIKey             string `mapstructure:"api_key"`
	Model              string `mapstructure:"model"`
	ProbeTimeoutSec    int    `mapstructure:"probe_timeout_sec"`
	GenerateTimeoutSec int    `mapstructure:"generate_timeout_sec"`
	HeartbeatMaxAgeSec int    `mapstructure:"heartbeat_max_age_sec"`
}

// ProbeTimeout 返回探测超时时间，未配置时默认为 3 秒。
func (c ModelServerConfig) ProbeTimeout() time.Duration {
	if c.ProbeTimeoutSec <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.ProbeTimeoutSec) * time.Second
}

// GenerateTimeout 返回生成超时时间，未配置时默认为 40 秒。
func (c ModelServerConfig) GenerateTimeout() time.Duration {
	if c.GenerateTimeoutSec <= 0 {
		return 40 * time.Second
	}
	return time.Duration(c.GenerateTimeoutSec) * time.Second
}

// HeartbeatMaxAge 返回心跳有效期，未配置时默认为 60 秒。
func (c ModelServerConfig) HeartbeatMaxAge() time.Duration {
	if c.HeartbeatMaxAgeSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.HeartbeatMaxAgeSec) * time.Second
}

// RouterConfig 存储路由决策相关的配置。
// 路由级联用到的阈值统一在这里显式化，缺省值由各访问器兜底。
type RouterConfig struct {
	ComplexityThreshold float64 `mapstructure:"complexity_threshold"`
	LoadCeiling         int     `mapstructure:"load_ceiling"`
	IdleWindowMinutes   int     `mapstructure:"idle_window_minutes"`
	HistoryLimit        int     `mapstructure:"history_limit"`
	TemplateCacheSec    int     `mapstructure:"template_cache_sec"`
}

// IdleWindow 返回对话空闲窗口，未配置时默认为 2 小时。
func (c RouterConfig) IdleWindow() time.Duration {
	if c.IdleWindowMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.IdleWindowMinutes) * time.Minute
}

// Threshold 返回复杂度阈值，未配置时默认为 0.7。
func (c RouterConfig) Threshold() float64 {
	if c.ComplexityThreshold <= 0 {
		return 0.7
	}
	return c.ComplexityThreshold
}

// Ceiling 返回负载上限，未配置时默认为 70。
func (c RouterConfig) Ceiling() int {
	if c.LoadCeiling <= 0 {
		return 70
	}
	return c.LoadCeiling
}

// History 返回历史窗口大小，未配置时默认为 10 条。
func (c RouterConfig) History() int {
	if c.HistoryLimit <= 0 {
		return 10
	}
	return c.HistoryLimit
}

// PersonalizeConfig 存储个性化改写相关的开关。
type PersonalizeConfig struct {
	NameSubstitution bool `mapstructure:"name_substitution"`
	FollowUp         bool `mapstructure:"follow_up"`
	NameRequest      bool `mapstructure:"name_request"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}
