package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPConfig struct {
	Address string        `yaml:"address" env:"GATEWAY_ADDRESS" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env:"GATEWAY_TIMEOUT" env-default:"10s"`
}

type GateConfig struct {
	ProtectedPaths []string `yaml:"protected_paths" env:"PROTECTED_PATHS" env-separator:"," env-default:"/dashboard"`
	LoginPath      string   `yaml:"login_path" env:"LOGIN_PATH" env-default:"/login"`
	SessionCookie  string   `yaml:"session_cookie" env:"SESSION_COOKIE" env-default:"session_token"`
}

type Config struct {
	LogLevel   string     `yaml:"log_level" env:"LOG_LEVEL" env-default:"DEBUG"`
	HTTP       HTTPConfig `yaml:"gateway"`
	Gate       GateConfig `yaml:"gate"`
	BackendURL string     `yaml:"backend_url" env:"BACKEND_URL" env-default:"http://localhost:8000"`
	AuthURL    string     `yaml:"auth_url" env:"AUTH_URL" env-default:"http://localhost:3000/api/auth"`
	DevMode    bool       `yaml:"dev_mode" env:"DEV_MODE" env-default:"false"`
}

// Client is what the terminal client needs: where to talk and which cookie
// material identifies the session it acts for.
type Client struct {
	LogLevel     string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	BackendURL   string        `yaml:"backend_url" env:"BACKEND_URL" env-default:"http://localhost:8000"`
	AuthURL      string        `yaml:"auth_url" env:"AUTH_URL" env-default:"http://localhost:3000/api/auth"`
	CookieHeader string        `yaml:"cookie_header" env:"SESSION_COOKIE_HEADER"`
	Timeout      time.Duration `yaml:"timeout" env:"CLIENT_TIMEOUT" env-default:"10s"`
}

func MustLoad(configPath string) Config {
	var cfg Config
	mustRead(configPath, &cfg)
	return cfg
}

func MustLoadClient(configPath string) Client {
	var cfg Client
	mustRead(configPath, &cfg)
	return cfg
}

func mustRead(configPath string, cfg any) {
	// empty path means env only
	if configPath == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			log.Fatalf("cannot read env: %s", err)
		}
		return
	}

	// try the file, fall back to env when it does not exist
	if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			if err := cleanenv.ReadEnv(cfg); err != nil {
				log.Fatalf("cannot read env: %s", err)
			}
			return
		}
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}
}
