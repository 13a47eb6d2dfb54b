package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lc2/ambispeech/internal/common"
)

type Config struct {
	// Path points at a JSON catalog file. Empty means the built-in catalog.
	Path string
}

func LoadConfig() Config {
	return Config{Path: strings.TrimSpace(os.Getenv("AMBISPEECH_PROMPTS_FILE"))}
}

// Load returns the validated template catalog: the JSON file from the
// configuration when set, the built-in defaults otherwise.
func Load(cfg Config) (Catalog, error) {
	logger := common.Logger()
	if cfg.Path == "" {
		catalog := DefaultCatalog()
		logger.Debug("prompt: using built-in catalog", "templates", len(catalog.Prompts))
		return catalog, nil
	}
	data, err := os.ReadFile(filepath.Clean(cfg.Path))
	if err != nil {
		return Catalog{}, fmt.Errorf("read prompt catalog: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("parse prompt catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	logger.Info("prompt: catalog loaded", "path", cfg.Path, "templates", len(catalog.Prompts))
	return catalog, nil
}
