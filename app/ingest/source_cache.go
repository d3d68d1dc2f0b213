package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// SourceCache holds ingestion source definitions loaded from a directory of
// YAML files and reloads them when the directory changes.
type SourceCache struct {
	sourcesDir string
	cache      map[string]*SourceConfig
	mu         sync.RWMutex
}

func NewSourceCache(sourcesDir string) *SourceCache {
	return &SourceCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*SourceConfig),
	}
}

func (sc *SourceCache) Run() error {
	if _, err := os.Stat(sc.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(sc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	yamlFiles, err := filepath.Glob(filepath.Join(sc.sourcesDir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)

	for _, file := range files {
		name := sourceNameFromFile(file)
		config, err := sc.LoadSource(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", name, "type", config.Type, "enabled", config.Settings.Enabled)
	}

	return nil
}

func (sc *SourceCache) LoadSource(name string) (*SourceConfig, error) {
	configFile, err := sc.findSourceFile(name)
	if err != nil {
		return nil, err
	}

	config, err := sc.parseSource(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = name

	if err := sc.validateSource(config); err != nil {
		return nil, fmt.Errorf("invalid source config %s: %w", configFile, err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache[config.Name] = config

	return config, nil
}

func (sc *SourceCache) GetSource(name string) (*SourceConfig, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	config, ok := sc.cache[name]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", name)
	}
	return config, nil
}

func (sc *SourceCache) GetEnabledSources() map[string]*SourceConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	enabled := make(map[string]*SourceConfig)
	for k, v := range sc.cache {
		if v.Settings.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (sc *SourceCache) GetSourceCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.cache)
}

// Watch reloads source definitions when files in the sources directory are
// created or written. Blocks until the context is canceled.
func (sc *SourceCache) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(sc.sourcesDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", sc.sourcesDir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			ext := filepath.Ext(event.Name)
			if ext != ".yml" && ext != ".yaml" {
				continue
			}

			name := sourceNameFromFile(event.Name)
			if _, err := sc.LoadSource(name); err != nil {
				slog.Warn("Failed to reload source config", "source", name, "error", err)
				continue
			}
			slog.Info("Source configuration reloaded", "source", name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Source watcher error", "error", err)
		}
	}
}

func (sc *SourceCache) parseSource(configFile string) (*SourceConfig, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config SourceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Country == "" {
		config.Country = "us"
	}
	if config.PageSize == 0 {
		config.PageSize = 100
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30
	}

	return &config, nil
}

func (sc *SourceCache) validateSource(config *SourceConfig) error {
	switch config.Type {
	case SourceTypeNewsAPI:
		// category and query are both optional; top-headlines is the default
	case SourceTypeRSS:
		if config.URL == "" {
			return fmt.Errorf("rss source requires a url")
		}
	default:
		return fmt.Errorf("unknown source type: %s", config.Type)
	}

	if config.PageSize < 0 {
		return fmt.Errorf("page size must be non-negative")
	}
	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	return nil
}

func (sc *SourceCache) findSourceFile(name string) (string, error) {
	for _, ext := range []string{".yml", ".yaml"} {
		path := filepath.Join(sc.sourcesDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("source config file for '%s' not found in %s", name, sc.sourcesDir)
}

func sourceNameFromFile(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
