package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Constantes de producto del pipeline de struggle. Los defaults replican
	// el comportamiento calibrado en producción; se exponen por env para poder
	// afinarlas sin recompilar.
	StruggleWindowHours  int     `env:"STRUGGLE_WINDOW_HOURS" envDefault:"24"`
	AlertCooldownHours   int     `env:"ALERT_COOLDOWN_HOURS" envDefault:"24"`
	AlertCriticalScore   float64 `env:"ALERT_CRITICAL_SCORE" envDefault:"9"`
	SentimentCutoff      float64 `env:"SENTIMENT_CUTOFF" envDefault:"0.45"`
	RepeatedTopicMin     int     `env:"REPEATED_TOPIC_MIN" envDefault:"3"`
	LatencyRatioMin      float64 `env:"LATENCY_RATIO_MIN" envDefault:"1.5"`
	BaselineLatencyMS    float64 `env:"BASELINE_LATENCY_MS" envDefault:"4000"`
	EngagementDropCutoff float64 `env:"ENGAGEMENT_DROP_CUTOFF" envDefault:"0.6"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
