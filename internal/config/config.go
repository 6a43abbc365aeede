package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis             Redis         `yaml:"redis"`
	FacebookOAuth     FacebookOAuth `yaml:"facebook-oauth"`
	HighScores        HighScores    `yaml:"high-scores"`
	SQLiteStoragePath string        `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"players.db"`
	JWTSecretKey      string        `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY" env-required:"true"`
	SecureCookies     bool          `yaml:"secure-cookies" env:"SECURE_COOKIES" env-default:"false"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"24h"`
}

type FacebookOAuth struct {
	ClientID     string   `yaml:"client-id" env:"FACEBOOK_CLIENT_ID"`
	ClientSecret string   `yaml:"client-secret" env:"FACEBOOK_CLIENT_SECRET"`
	RedirectURL  string   `yaml:"redirect-url" env:"FACEBOOK_REDIRECT_URL" env-default:"http://localhost:9090/auth/facebook/callback"`
	Scopes       []string `yaml:"scopes" env:"FACEBOOK_SCOPES" env-default:"public_profile,email"`
}

type HighScores struct {
	URL     string        `yaml:"url" env:"HIGH_SCORES_URL" env-default:"https://ftw-highscores.herokuapp.com"`
	GameKey string        `yaml:"game-key" env:"HIGH_SCORES_GAME_KEY" env-default:"tictactoe-dev"`
	Timeout time.Duration `yaml:"timeout" env:"HIGH_SCORES_TIMEOUT" env-default:"10s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
