package cmd

import (
	"fmt"
	"os"

	"github.com/docgpt-ai/docgpt/internal/config"
	"github.com/docgpt-ai/docgpt/internal/engine"
	"github.com/docgpt-ai/docgpt/internal/session"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docgpt init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// apiKeyFromEnv returns the OpenAI API key for CLI commands.
func apiKeyFromEnv() (string, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable is required (set it or put it in a .env file)")
	}
	return key, nil
}

// engineFactory binds engine construction to the loaded config so sessions
// can build engines lazily from their own credential.
func engineFactory(cfg *config.Config) session.EngineFactory {
	return func(credential string) (engine.Engine, error) {
		return engine.FromConfig(cfg, credential)
	}
}

// cliSession creates the single session used by non-interactive commands.
func cliSession(cfg *config.Config, apiKey string) *session.Session {
	manager := session.NewManager(engineFactory(cfg))
	sess := manager.GetOrCreate("cli")
	sess.SetCredential(apiKey)
	return sess
}
