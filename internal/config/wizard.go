package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .docgpt.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to docgpt! Let's configure your knowledge base.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Chat model selection.
	modelPrompt := promptui.Select{
		Label: "Select chat model",
		Items: []string{"gpt-4o", "gpt-4o-mini", "gpt-4"},
	}
	_, model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model selection: %w", err)
	}
	cfg.Model = model

	// 2. Embedding model selection.
	embedPrompt := promptui.Select{
		Label: "Select embedding model",
		Items: []string{"text-embedding-3-small", "text-embedding-3-large"},
	}
	_, embedModel, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding model selection: %w", err)
	}
	cfg.EmbeddingModel = embedModel

	// 3. Knowledge base directory.
	kbPrompt := promptui.Prompt{
		Label:   "Knowledge base directory",
		Default: cfg.KnowledgeBase,
	}
	kbDir, err := kbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("knowledge base dir: %w", err)
	}
	cfg.KnowledgeBase = kbDir

	// 4. Chunk size.
	chunkPrompt := promptui.Prompt{
		Label:   "Chunk size (characters)",
		Default: strconv.Itoa(cfg.ChunkSize),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	chunkStr, err := chunkPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk size: %w", err)
	}
	cfg.ChunkSize, _ = strconv.Atoi(chunkStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(".docgpt.yml"); err != nil {
		return nil, err
	}
	fmt.Println("\nConfiguration saved to .docgpt.yml")

	return cfg, nil
}
