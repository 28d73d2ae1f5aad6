package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string   `env:"PORT" envDefault:"3000"`
		ReadTimeout     int      `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int      `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int      `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int      `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envDefault:"*"`
		MaxUploadSize   int64    `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10 MiB
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD"`
		FullName string `env:"FULL_NAME" envDefault:"Administrator"`
		Email    string `env:"EMAIL"`
		DSPCode  string `env:"DSP_CODE" envDefault:"DEMO"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 小时，14 天
		Secret     string `env:"SECRET"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"changeme"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
		CacheExpiration     int    `env:"CACHE_EXPIRATION" envDefault:"300"` // 秒
	} `envPrefix:"REDIS_"`
	Storage struct {
		UploadDir string `env:"UPLOAD_DIR" envDefault:"./uploads"`
		BaseURL   string `env:"BASE_URL" envDefault:"/uploads"`
	} `envPrefix:"STORAGE_"`
	Client struct {
		BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:3000"`
		DSPCode        string `env:"DSP_CODE"`
		Token          string `env:"TOKEN"`
		Language       string `env:"LANGUAGE" envDefault:"en"`
		RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"15"`
		EventsDSN      string `env:"EVENTS_DSN"`
	} `envPrefix:"DISPATCH_"`
}

// LoadConfig 读取环境变量，若当前目录存在 .env 文件则先加载它
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// RequireServer 检查 API 服务所必需的配置项
func (c *Config) RequireServer() error {
	switch {
	case c.Database.DSN == "":
		return errors.New("DATABASE_DSN is required")
	case c.JWT.Secret == "":
		return errors.New("JWT_SECRET is required")
	case c.RabbitMQ.DSN == "":
		return errors.New("RABBITMQ_DSN is required")
	case c.InitialAdmin.Password == "":
		return errors.New("INITIAL_ADMIN_PASSWORD is required")
	}
	return nil
}

// RequireMail 检查邮件 worker 所必需的配置项
func (c *Config) RequireMail() error {
	switch {
	case c.Email.SMTP.Host == "":
		return errors.New("EMAIL_SMTP_HOST is required")
	case c.Email.SMTP.Username == "":
		return errors.New("EMAIL_SMTP_USERNAME is required")
	case c.RabbitMQ.DSN == "":
		return errors.New("RABBITMQ_DSN is required")
	}
	return nil
}

// RequireDatabase 检查 seed 等只访问数据库的命令所必需的配置项
func (c *Config) RequireDatabase() error {
	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	return nil
}
