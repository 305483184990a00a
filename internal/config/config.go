package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Prompt  PromptConfig  `mapstructure:"prompt"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Log     LogConfig     `mapstructure:"log"`
	History HistoryConfig `mapstructure:"history"`
	Storage StorageConfig `mapstructure:"storage"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// LLMConfig 描述生成模型的提供方与候选模型。
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // gemini | openai | ark | qwen
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	FlashModel     string        `mapstructure:"flash_model"`
	ProModel       string        `mapstructure:"pro_model"`
	FallbackModels []string      `mapstructure:"fallback_models"`
	FallbackDelay  time.Duration `mapstructure:"fallback_delay"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`         // 单次模型调用
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 一次生成（含全部回退尝试），须小于 server.write_timeout
	AllowClientKey bool          `mapstructure:"allow_client_key"`
	DebugRequest   bool          `mapstructure:"debug_request"`
}

// PromptConfig 允许覆盖内置提示词模板，留空使用默认模板。
type PromptConfig struct {
	System string `mapstructure:"system"`
	User   string `mapstructure:"user"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HistoryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	DataDir   string `mapstructure:"data_dir"`
	CacheSize int    `mapstructure:"cache_size"`
}

// envKeys 按提供方列出备用的 API Key 环境变量。
var envKeys = map[string][]string{
	"gemini": {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"openai": {"OPENAI_API_KEY"},
	"ark":    {"ARK_API_KEY", "DOUBAO_API_KEY"},
	"qwen":   {"DASHSCOPE_API_KEY"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.flash_model", "gemini-1.5-flash")
	v.SetDefault("llm.pro_model", "gemini-1.5-pro")
	v.SetDefault("llm.fallback_models", []string{"gemini-1.5-flash", "gemini-pro"})
	v.SetDefault("llm.fallback_delay", time.Second)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.request_timeout", 110*time.Second)
	v.SetDefault("llm.allow_client_key", false)
	v.SetDefault("llm.debug_request", false)

	v.SetDefault("prompt.system", "")
	v.SetDefault("prompt.user", "")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept"})
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.ttl", 24*time.Hour)
	v.SetDefault("history.cleanup_interval", 10*time.Minute)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.cache_size", 200)
}

// Load 读取配置文件；configPath 为空时只使用默认值和环境变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RECORDMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))

	// 配置文件优先，如果配置文件中没有设置，则使用环境变量
	if c.LLM.APIKey == "" {
		for _, name := range envKeys[c.LLM.Provider] {
			if key := os.Getenv(name); key != "" {
				c.LLM.APIKey = key
				break
			}
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	if _, ok := envKeys[c.LLM.Provider]; !ok {
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if c.LLM.FlashModel == "" {
		return fmt.Errorf("llm.flash_model is required")
	}
	if c.LLM.ProModel == "" {
		c.LLM.ProModel = c.LLM.FlashModel
	}
	if c.LLM.FallbackDelay < 0 {
		return fmt.Errorf("llm.fallback_delay must not be negative")
	}
	if c.LLM.RequestTimeout <= 0 {
		return fmt.Errorf("llm.request_timeout must be positive")
	}
	// 生成超时必须先于连接写超时触发，客户端才能收到 504 而不是断开的连接
	if c.Server.WriteTimeout > 0 && c.LLM.RequestTimeout >= c.Server.WriteTimeout {
		return fmt.Errorf("llm.request_timeout (%s) must be shorter than server.write_timeout (%s)",
			c.LLM.RequestTimeout, c.Server.WriteTimeout)
	}
	if c.Storage.Type != "memory" && c.Storage.Type != "disk" {
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}
	return nil
}
