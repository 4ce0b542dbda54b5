package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Games      Games  `yaml:"games"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Games holds the tuning constants of the rule sets.
type Games struct {
	PairCount            int           `yaml:"pair-count" env-default:"8"`
	MatchResolveDelay    time.Duration `yaml:"match-resolve-delay" env-default:"500ms"`
	MismatchResolveDelay time.Duration `yaml:"mismatch-resolve-delay" env-default:"1s"`
	TickInterval         time.Duration `yaml:"tick-interval" env-default:"1s"`
	HistoryCap           int           `yaml:"history-cap" env-default:"5"`
	// Seed of the random provider, 0 picks a random one.
	Seed uint64 `yaml:"seed" env:"GAMES_SEED" env-default:"0"`
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
