package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/personal-notes/internal/dao"
	"github.com/haierkeys/personal-notes/pkg/storage"
	"github.com/haierkeys/personal-notes/pkg/util"
	"github.com/haierkeys/personal-notes/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the remote inputs, first non-empty wins
// 覆盖远端配置的环境变量，取第一个非空值
var (
	EnvRemoteURL = []string{"NOTES_REMOTE_URL", "SUPABASE_URL"}
	EnvRemoteKey = []string{"NOTES_REMOTE_KEY", "SUPABASE_KEY"}
)

// AppConfig 应用配置
type AppConfig struct {
	File   string           `yaml:"-"` // 配置文件路径，不序列化
	Server ServerConfig     `yaml:"server"`
	Log    LogConfig        `yaml:"log"`
	Remote dao.RemoteConfig `yaml:"remote"`
	Local  storage.Config   `yaml:"local"`
	Notes  NotesConfig      `yaml:"notes"`
	App    AppSettings      `yaml:"app"`
	Tracer TracerConfig     `yaml:"tracer"`
}

type LogConfig struct {
	// Level 日志级别
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，为空时只输出到控制台
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 生产模式输出 JSON
	Production bool `yaml:"production" default:"true"`
}

type ServerConfig struct {
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort API 监听地址
	HttpPort     string `yaml:"http-port" default:":9100"`
	ReadTimeout  int    `yaml:"read-timeout" default:"60"`
	WriteTimeout int    `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen metrics 与 pprof 监听地址，为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:":9101"`
}

// NotesConfig 笔记存储行为
type NotesConfig struct {
	// LocalKey 本地集合的存储键
	LocalKey string `yaml:"local-key" default:"notes-app:notes"`
	// StrictLocal 本地写入失败时返回错误
	StrictLocal bool `yaml:"strict-local"`
	// SchemaCheck 启动时检查远端表结构
	SchemaCheck bool `yaml:"schema-check" default:"true"`
}

type AppSettings struct {
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"30"`

	// WriteRateCapacity 写接口令牌桶容量，0 表示不限流
	WriteRateCapacity int64 `yaml:"write-rate-capacity" default:"20"`
	// WriteRateQuantum 每秒补充的令牌数
	WriteRateQuantum int64 `yaml:"write-rate-quantum" default:"10"`

	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

type TracerConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Header  string `yaml:"header" default:"X-Trace-ID"`
}

// LoadConfig 读取配置文件，应用默认值与环境变量覆盖
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	c.ApplyEnv(os.LookupEnv)

	return c, realpath, nil
}

// ApplyEnv overrides the remote url and key from the environment
// ApplyEnv 使用环境变量覆盖远端地址与密钥
func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) {
	if v := firstEnv(lookup, EnvRemoteURL); v != "" {
		c.Remote.URL = v
	}
	if v := firstEnv(lookup, EnvRemoteKey); v != "" {
		c.Remote.Key = v
	}
}

func firstEnv(lookup func(string) (string, bool), names []string) string {
	for _, name := range names {
		if v, ok := lookup(name); ok && v != "" {
			return v
		}
	}
	return ""
}

func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetRemoteTimeout 单次远端调用超时
func (c *AppConfig) GetRemoteTimeout() time.Duration {
	return util.ParseDurationOr(c.Remote.Timeout, 10*time.Second)
}

// GetProbeInterval 远端探测周期
func (c *AppConfig) GetProbeInterval() time.Duration {
	return util.ParseDurationOr(c.Remote.ProbeInterval, time.Minute)
}

func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if c.App.WriteQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}
	if c.App.WriteQueueIdleTime != "" {
		if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil {
			cfg.IdleTimeout = idleTime
		}
	}

	return cfg
}
