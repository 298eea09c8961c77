package config

import "time"

// Config is the root configuration for the gridpulse daemon.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
	Mongo  MongoConfig  `koanf:"mongo"`
	Auth   AuthConfig   `koanf:"auth"`
	Data   DataConfig   `koanf:"data"`
	Mail   MailConfig   `koanf:"mail"`
	LLM    LLMConfig    `koanf:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
}

// MongoConfig holds document store settings.
//
// URI is the only configuration value the process refuses to start
// without; everything else has a default.
type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	// Secret signs bearer tokens. When empty a random per-process
	// secret is generated, which invalidates sessions on restart.
	Secret string `koanf:"secret"`
	// TokenTTL bounds how long a login stays valid.
	TokenTTL time.Duration `koanf:"token_ttl"`
}

// DataConfig locates the static CSV input and the derived aggregate file.
type DataConfig struct {
	// Dir is the directory holding CSV artifacts.
	Dir string `koanf:"dir"`
	// SourceFile is the static energy consumption/generation CSV.
	SourceFile string `koanf:"source_file"`
	// AggregateFile is the derived per-country/year aggregate CSV.
	AggregateFile string `koanf:"aggregate_file"`
}

// MailConfig holds outbound SMTP settings.
type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// LLMConfig holds settings for the insight model provider.
type LLMConfig struct {
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}
