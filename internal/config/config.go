package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		MaxUploadSize   int64  `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10 MiB
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	// el token lo emite el proveedor de autenticación con este secreto compartido
	JWT struct {
		Secret     string `env:"SECRET,required"`
		CookieName string `env:"COOKIE_NAME" envDefault:"__mobility_console_token"`
	} `envPrefix:"JWT_"`
	Seed struct {
		EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"movilidad.example.cl"`
	} `envPrefix:"SEED_"`
	Email struct {
		AdminAddress    string `env:"ADMIN_ADDRESS,required"`
		DispatchAddress string `env:"DISPATCH_ADDRESS,required"`
		SMTP            struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Matching struct {
		LooseThreshold         float64  `env:"LOOSE_THRESHOLD" envDefault:"0.70"`
		ExportThreshold        float64  `env:"EXPORT_THRESHOLD" envDefault:"0.75"`
		Stoplist               []string `env:"STOPLIST" envSeparator:","`
		Scoring                string   `env:"SCORING" envDefault:"tiered"`
		MatchAddress           bool     `env:"MATCH_ADDRESS" envDefault:"false"`
		MatchWithoutCheckDigit bool     `env:"MATCH_WITHOUT_CHECK_DIGIT" envDefault:"false"`
		SuggestionExpiration   int      `env:"SUGGESTION_EXPIRATION" envDefault:"168"` // horas, 7 días
	} `envPrefix:"MATCHING_"`
	Dispatch struct {
		EveningHour       int    `env:"EVENING_HOUR" envDefault:"21"`
		MorningHour       int    `env:"MORNING_HOUR" envDefault:"7"`
		SundayMorningHour int    `env:"SUNDAY_MORNING_HOUR" envDefault:"8"`
		TimeZone          string `env:"TIME_ZONE" envDefault:"America/Santiago"`
	} `envPrefix:"DISPATCH_"`
	// sin endpoint los manifiestos no se suben
	Storage struct {
		Endpoint        string `env:"ENDPOINT"`
		AccessKeyID     string `env:"ACCESS_KEY_ID"`
		SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
		Bucket          string `env:"BUCKET" envDefault:"manifiestos"`
		Region          string `env:"REGION"`
		UseSSL          bool   `env:"USE_SSL" envDefault:"false"`
		UploadTimeout   int    `env:"UPLOAD_TIMEOUT" envDefault:"30"`
	} `envPrefix:"STORAGE_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// solo el primer error, así el log queda legible
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
