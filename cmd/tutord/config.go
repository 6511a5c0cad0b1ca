package main

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/homework-ai/tutor/agent"
	"github.com/homework-ai/tutor/server"
	"github.com/homework-ai/tutor/tutor"
)

// appConfig gathers everything the daemon needs at startup.
type appConfig struct {
	Engine tutor.Config
	Server server.Config
	Debug  bool
}

// loadConfig reads configuration from the environment, falling back to
// an optional config.yml in the working directory. Environment variables
// use the flat upper-case names (GEMINI_API_KEY, MAX_HISTORY_LENGTH, ...).
func loadConfig() (*appConfig, error) {
	v := viper.New()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("tutor_debug", false)
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("rate_limit", "50/hour")
	v.SetDefault("redis_addr", "")
	v.SetDefault("max_history_length", 5)
	v.SetDefault("session_pin_instruction", false)
	v.SetDefault("session_idle_ttl", time.Duration(0))
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("backend_provider", agent.ProviderGemini)
	v.SetDefault("backend_timeout", 60*time.Second)

	v.SetConfigFile("config.yml")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &appConfig{
		Engine: tutor.DefaultConfig(),
		Server: server.DefaultConfig(),
		Debug:  v.GetBool("tutor_debug"),
	}

	cfg.Engine.Session.MaxHistory = v.GetInt("max_history_length")
	cfg.Engine.Session.PinInstruction = v.GetBool("session_pin_instruction")
	cfg.Engine.Session.IdleTTL = v.GetDuration("session_idle_ttl")

	cfg.Engine.Backend.Provider = v.GetString("backend_provider")
	cfg.Engine.Backend.APIKey = v.GetString("gemini_api_key")
	cfg.Engine.Backend.Model = v.GetString("gemini_model")
	cfg.Engine.Backend.Timeout = v.GetDuration("backend_timeout")

	cfg.Server.Host = v.GetString("host")
	cfg.Server.Port = v.GetInt("port")
	cfg.Server.Debug = cfg.Debug
	cfg.Server.AllowedOrigins = splitOrigins(v.GetString("allowed_origins"))
	cfg.Server.RateLimit = v.GetString("rate_limit")
	cfg.Server.RedisAddr = v.GetString("redis_addr")

	if cfg.Engine.Backend.Provider == agent.ProviderGemini && cfg.Engine.Backend.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if err := cfg.Engine.Session.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitOrigins(s string) []string {
	var origins []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
