package main

import (
	"fmt"
	"os"

	"github.com/streamnbt/nbt/tree"
	"gopkg.in/yaml.v3"
)

// BatchConfig describes a batch of files to dump in one invocation,
// loaded from a YAML document via the "batch" subcommand.
type BatchConfig struct {
	// Mode selects the output shape: "frags" or "tree".
	Mode string `yaml:"mode"`
	// ChunkSize feeds the parser this many bytes at a time; 0 means
	// whole-buffer. Ignored when Mode is "tree".
	ChunkSize int `yaml:"chunk_size"`
	// Files lists the input paths to process, in order.
	Files []string `yaml:"files"`
}

func loadBatchConfig(path string) (*BatchConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	var cfg BatchConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Mode == "" {
		cfg.Mode = "frags"
	}
	if cfg.Mode != "frags" && cfg.Mode != "tree" {
		return nil, fmt.Errorf("config: mode must be \"frags\" or \"tree\", got %q", cfg.Mode)
	}
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("config: files list is empty")
	}
	return &cfg, nil
}

func runBatch(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("batch: missing config file\nUsage: nbtdump batch <config.yaml>")
	}

	cfg, err := loadBatchConfig(args[0])
	if err != nil {
		return err
	}

	for _, path := range cfg.Files {
		fmt.Printf("=== %s ===\n", path)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("batch: %s: %w", path, err)
		}

		switch cfg.Mode {
		case "frags":
			if err := dumpFragments(os.Stdout, data, cfg.ChunkSize); err != nil {
				return fmt.Errorf("batch: %s: %w", path, err)
			}
		case "tree":
			root, err := tree.Build(data)
			if err != nil {
				return fmt.Errorf("batch: %s: %w", path, err)
			}
			printNode(os.Stdout, root, 0)
		}
	}
	return nil
}
