package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the engine configuration, read from a TOML file.
type Config struct {
	Engine  EngineConfig      `toml:"engine"`
	Chunks  ChunkConfig       `toml:"chunks"`
	Storage StorageConfig     `toml:"storage"`
	Game    GameConfig        `toml:"game"`
	Scenes  map[string]string `toml:"scenes"`
}

type EngineConfig struct {
	Name string `toml:"name"`
	// ProjectPath is the root holding the Resources directory. Relative paths are
	// resolved against the directory of the config file.
	ProjectPath string `toml:"project_path"`
	LogLevel    string `toml:"log_level"`
}

type ChunkConfig struct {
	LoadDistance   float32 `toml:"load_distance"`
	UnloadDistance float32 `toml:"unload_distance"`
}

type StorageConfig struct {
	// ChunkStore is the sqlite file persisting unloaded chunks, relative to the
	// project path. Empty disables persistence.
	ChunkStore string `toml:"chunk_store"`
}

type GameConfig struct {
	StartScene      string `toml:"start_scene"`
	SceneSwitchMode string `toml:"scene_switch_mode"`
	HotReload       bool   `toml:"hot_reload"`
	MaxFrames       int    `toml:"max_frames"`
}

func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Name:     "ose",
			LogLevel: "info",
		},
		Chunks: ChunkConfig{
			LoadDistance:   10,
			UnloadDistance: 20,
		},
		Game: GameConfig{
			SceneSwitchMode: "remove_all",
		},
		Scenes: make(map[string]string),
	}
}

// LoadConfig reads the TOML file at path on top of DefaultConfig and validates it.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Engine.ProjectPath != "" && !filepath.IsAbs(cfg.Engine.ProjectPath) {
		cfg.Engine.ProjectPath = filepath.Join(filepath.Dir(path), cfg.Engine.ProjectPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unusable values. An unload distance below the load distance is
// only warned about: chunks in the overlap will thrash but the engine still runs.
func (c *Config) Validate() error {
	if c.Engine.ProjectPath == "" {
		return fmt.Errorf("engine.project_path must be set: %w", ErrInvalidConfig)
	}
	if c.Chunks.LoadDistance < 0 || c.Chunks.UnloadDistance < 0 {
		return fmt.Errorf("chunk distances must be positive (load=%f, unload=%f): %w",
			c.Chunks.LoadDistance, c.Chunks.UnloadDistance, ErrInvalidConfig)
	}
	if c.Chunks.UnloadDistance < c.Chunks.LoadDistance {
		LogWarn("chunks.unload_distance (%f) is below chunks.load_distance (%f), chunks will thrash",
			c.Chunks.UnloadDistance, c.Chunks.LoadDistance)
	}
	if c.Game.StartScene != "" {
		if _, ok := c.Scenes[c.Game.StartScene]; !ok {
			return fmt.Errorf("game.start_scene '%s' is not listed in [scenes]: %w", c.Game.StartScene, ErrInvalidConfig)
		}
	}
	return nil
}

// ChunkStorePath returns the absolute chunk store location, or "" when disabled.
func (c *Config) ChunkStorePath() string {
	if c.Storage.ChunkStore == "" {
		return ""
	}
	if filepath.IsAbs(c.Storage.ChunkStore) {
		return c.Storage.ChunkStore
	}
	return filepath.Join(c.Engine.ProjectPath, c.Storage.ChunkStore)
}
