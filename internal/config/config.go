package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider 选择助手使用的补全后端。
type Provider string

const (
	ProviderHTTP      Provider = "http"
	ProviderArk       Provider = "ark"
	ProviderOpenAI    Provider = "openai"
	ProviderLangChain Provider = "langchain"
)

const (
	defaultBaseURL     = "https://api.nvcf.nvidia.com/v2"
	defaultModel       = "mistralai/mixtral-8x7b-instruct-v0.1"
	defaultTemperature = 0.7
	defaultMaxTokens   = 500
	defaultPersonaID   = "utkarsh-barad"
)

// EnvAssistantAPIKey 是补全服务凭证所在的环境变量。
const EnvAssistantAPIKey = "ASSISTANT_API_KEY"

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Assistant AssistantConfig
	Persona   PersonaConfig
	Log       LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	assistant, err := loadAssistantConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Assistant: assistant,
		Persona:   loadPersonaConfig(),
		Log:       loadLogConfig(),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址与跨域白名单。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	addr := port
	if !strings.Contains(port, ":") {
		addr = ":" + port
	}

	return ServerConfig{
		Addr:           addr,
		AllowedOrigins: parseListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}, nil
}

// AssistantConfig 描述补全服务相关配置。
type AssistantConfig struct {
	Provider    Provider
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout 为 0 时请求没有超时，挂起的请求会一直保持等待状态。
	// 所有后端一致，ark 不会退回 SDK 自带的默认超时。
	Timeout time.Duration

	// Ark 专用
	Region    string
	AccessKey string
	SecretKey string
}

// Enabled 表示是否提供了必需的密钥。
func (c AssistantConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	if c.Provider == ProviderArk {
		return c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != "")
	}
	return c.APIKey != ""
}

// Endpoint 返回 chat completions 的完整地址。
func (c AssistantConfig) Endpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
}

func loadAssistantConfig() (AssistantConfig, error) {
	provider := Provider(strings.ToLower(getEnvOrDefault("ASSISTANT_PROVIDER", string(ProviderHTTP))))
	switch provider {
	case ProviderHTTP, ProviderArk, ProviderOpenAI, ProviderLangChain:
	default:
		return AssistantConfig{}, fmt.Errorf("invalid ASSISTANT_PROVIDER value %q", provider)
	}

	temperature, err := parseOptionalFloatEnv("ASSISTANT_TEMPERATURE")
	if err != nil {
		return AssistantConfig{}, err
	}
	temp := defaultTemperature
	if temperature != nil {
		temp = *temperature
	}
	if temp < 0 || temp > 2 {
		return AssistantConfig{}, fmt.Errorf("ASSISTANT_TEMPERATURE must be within [0, 2], got %v", temp)
	}

	maxTokens, err := parseOptionalIntEnv("ASSISTANT_MAX_TOKENS")
	if err != nil {
		return AssistantConfig{}, err
	}
	tokens := defaultMaxTokens
	if maxTokens != nil {
		tokens = *maxTokens
	}
	if tokens <= 0 {
		return AssistantConfig{}, fmt.Errorf("ASSISTANT_MAX_TOKENS must be > 0, got %d", tokens)
	}

	timeout, err := parseDurationEnv("ASSISTANT_TIMEOUT", 0)
	if err != nil {
		return AssistantConfig{}, err
	}
	if timeout < 0 {
		return AssistantConfig{}, fmt.Errorf("ASSISTANT_TIMEOUT must not be negative, got %s", timeout)
	}

	return AssistantConfig{
		Provider:    provider,
		APIKey:      strings.TrimSpace(os.Getenv(EnvAssistantAPIKey)),
		BaseURL:     defaultBaseURLFor(provider),
		Model:       getEnvOrDefault("ASSISTANT_MODEL", defaultModel),
		Temperature: temp,
		MaxTokens:   tokens,
		Timeout:     timeout,
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
	}, nil
}

// defaultBaseURLFor 只为 http 提供默认地址，SDK 类后端留空时使用各自 SDK 的默认地址。
func defaultBaseURLFor(provider Provider) string {
	if provider == ProviderHTTP {
		return getEnvOrDefault("ASSISTANT_BASE_URL", defaultBaseURL)
	}
	return strings.TrimSpace(os.Getenv("ASSISTANT_BASE_URL"))
}

// PersonaConfig 描述助手代言的人物。
type PersonaConfig struct {
	DefaultID string
	File      string
}

func loadPersonaConfig() PersonaConfig {
	return PersonaConfig{
		DefaultID: getEnvOrDefault("PERSONA_ID", defaultPersonaID),
		File:      strings.TrimSpace(os.Getenv("PERSONA_FILE")),
	}
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	// 纯数字按秒处理
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
