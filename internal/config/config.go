// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称
	Host    string `toml:"host"`    // 服务器监听地址
	Port    int    `toml:"port"`    // 服务器监听端口
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置
// 既用于缓存，也用于跨实例消息的发布/订阅
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"` // 无密码留空
	Db       int    `toml:"db"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	// Secret 签名密钥。留空时每次启动生成随机密钥，
	// 进程重启会使所有已签发的 Token 失效
	Secret        string `toml:"secret"`
	ExpiryMinutes int    `toml:"expiryMinutes"` // Token 有效期（分钟），默认 60
}

// BusConfig 消息总线配置
// mode 决定跨实例转发走 Redis 发布/订阅还是 Kafka
type BusConfig struct {
	Mode          string `toml:"mode"`          // "redis" 或 "kafka"
	KafkaHostPort string `toml:"kafkaHostPort"` // Kafka 服务器地址，如 "localhost:9092"
	Timeout       int64  `toml:"timeout"`       // Kafka 读写超时（秒）
	PersistIngest bool   `toml:"persistIngest"` // 消息转发时是否同时落库
	IngestChatId  uint   `toml:"ingestChatId"`  // 落库时使用的会话 id
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig  `toml:"mainConfig"`
	MysqlConfig `toml:"mysqlConfig"`
	RedisConfig `toml:"redisConfig"`
	LogConfig   `toml:"logConfig"`
	JWTConfig   `toml:"jwtConfig"`
	BusConfig   `toml:"busConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	// 候选配置文件路径（优先加载本地配置）
	paths := []string{
		"configs/config_local.toml",
		"configs/config.toml",
		"../../configs/config_local.toml",
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
	}
	return config
}
