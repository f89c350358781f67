package cogito

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soundprediction/cogito"
	"github.com/soundprediction/cogito/pkg/config"
	"github.com/soundprediction/cogito/pkg/types"
)

// loadGraphFile reads a graph document from disk, accepting JSON or YAML
// by file extension.
func loadGraphFile(path string) (*types.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return types.ParseYAML(data)
	default:
		return types.ParseJSON(data)
	}
}

// newEngine builds a file-command engine client from the loaded config.
func newEngine() (cogito.Engine, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	client := cogito.NewClient(
		cogito.ConfigFromEngine(cfg.Engine),
		cogito.WithLogger(newLogger(cfg.Log.Level)),
	)
	return client, cfg, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
