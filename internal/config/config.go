package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "eisen.db"
	appDirName            = "eisen"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Edit      string `toml:"edit"`
	Focus     string `toml:"focus"`
	Refresh   string `toml:"refresh"`
	SwitchTab string `toml:"switch_tab"`
	Logout    string `toml:"logout"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
}

type Config struct {
	// APIURL selects the REST backend. Empty means local-only mode backed
	// by the sqlite store.
	APIURL         string `toml:"api_url"`
	DBPath         string `toml:"db_path"`
	DefaultTab     string `toml:"default_tab"`
	FocusDurations []int  `toml:"focus_durations"` // seconds
	Keys           Keymap `toml:"keys"`
}

// ResolveConfigPath places the config under the user config directory,
// falling back to the working directory.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	if len(cfg.FocusDurations) == 0 {
		cfg.FocusDurations = defaultConfig().FocusDurations
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultDBName
	}
	return filepath.Join(dir, appDirName, DefaultDBName)
}

func defaultConfig() Config {
	return Config{
		DBPath:         defaultDBPath(),
		DefaultTab:     "today",
		FocusDurations: []int{5 * 60, 10 * 60, 25 * 60},
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Up:        "k",
			Down:      "j",
			Toggle:    " ",
			Delete:    "d",
			Edit:      "e",
			Focus:     "f",
			Refresh:   "g",
			SwitchTab: "tab",
			Logout:    "L",
			Confirm:   "enter",
			Cancel:    "esc",
		},
	}
}
