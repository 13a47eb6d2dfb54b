package icd10

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Path is the SQLite database holding the reference corpus.
	Path string
	// CSVPath optionally seeds an empty corpus from a code;description file.
	CSVPath string
	// EmbedBatch is the number of descriptions per embedding call when
	// vectorizing the corpus at startup.
	EmbedBatch int
}

func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("ICD10_DB_PATH")); path != "" {
		cfg.Path = path
	}
	if csvPath := strings.TrimSpace(os.Getenv("ICD10_CSV_PATH")); csvPath != "" {
		cfg.CSVPath = csvPath
	}
	if batch := strings.TrimSpace(os.Getenv("ICD10_EMBED_BATCH")); batch != "" {
		value, err := strconv.Atoi(batch)
		if err != nil {
			return Config{}, fmt.Errorf("parse ICD10_EMBED_BATCH: %w", err)
		}
		if value > 0 {
			cfg.EmbedBatch = value
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Path) == "" {
		c.Path = "data/icd10.db"
	}
	if c.EmbedBatch <= 0 {
		c.EmbedBatch = 64
	}
}
