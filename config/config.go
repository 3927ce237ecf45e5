package config

import (
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"sevenday"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"sevenday"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"sday"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 生成模型配置
	GeminiAPIKey        string `env:"GEMINI_API_KEY"`
	GeminiModel         string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	ModelTimeoutSeconds int    `env:"MODEL_TIMEOUT_SECONDS" envDefault:"60"`

	// 训练营规则
	// 所有日期计算都使用同一个固定时区偏移
	ProgramUTCOffsetHours int    `env:"PROGRAM_UTC_OFFSET_HOURS" envDefault:"8"`
	MembershipGrantDays   int    `env:"MEMBERSHIP_GRANT_DAYS" envDefault:"30"`
	ReportVersion         string `env:"REPORT_VERSION" envDefault:"v2"`

	// 语言配置，KNOWN_ORIGINS 形如 sevenday.cn=zh-CN,sevenday.app=en
	DefaultLocale string   `env:"DEFAULT_LOCALE" envDefault:"zh-CN"`
	KnownOrigins  []string `env:"KNOWN_ORIGINS" envSeparator:"," envDefault:"sevenday.cn=zh-CN,sevenday.app=en"`

	// Snowflake ID 生成器配置
	// worker 也会创建动态，必须使用与 server 不同的 machine id
	SnowflakeMachineID       int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	WorkerSnowflakeMachineID int64 `env:"WORKER_SNOWFLAKE_MACHINE_ID" envDefault:"2"`
	SnowflakeDataCenter      int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Validate 检查启动服务所必需的配置，测试中不会调用
func (c *Config) Validate() {
	if c.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	if c.ProgramUTCOffsetHours < -12 || c.ProgramUTCOffsetHours > 14 {
		log.Fatal("PROGRAM_UTC_OFFSET_HOURS must be within [-12, 14]")
	}

	if c.SnowflakeMachineID == c.WorkerSnowflakeMachineID {
		log.Fatal("SNOWFLAKE_MACHINE_ID and WORKER_SNOWFLAKE_MACHINE_ID must differ")
	}

	for _, pair := range c.KnownOrigins {
		if _, _, ok := splitOrigin(pair); !ok {
			log.Fatalf("KNOWN_ORIGINS entry %q must look like host=locale", pair)
		}
	}

	if c.GeminiAPIKey == "" {
		log.Printf("WARN: GEMINI_API_KEY is not set, report generation will fail with UPSTREAM_ERROR")
	}
}

// OriginLocales 把 KNOWN_ORIGINS 的 host=locale 列表转成映射，格式不对的项被忽略
func (c *Config) OriginLocales() map[string]string {
	out := make(map[string]string, len(c.KnownOrigins))
	for _, pair := range c.KnownOrigins {
		if host, locale, ok := splitOrigin(pair); ok {
			out[host] = locale
		}
	}
	return out
}

func splitOrigin(pair string) (host, locale string, ok bool) {
	host, locale, found := strings.Cut(pair, "=")
	host, locale = strings.TrimSpace(host), strings.TrimSpace(locale)
	if !found || host == "" || locale == "" {
		return "", "", false
	}
	return host, locale, true
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

// ModelTimeout 单次模型调用的超时时间
func (c *Config) ModelTimeout() time.Duration {
	if c.ModelTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.ModelTimeoutSeconds) * time.Second
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
