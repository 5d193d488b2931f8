package config

const (
	defaultLogDir       = "~/.local/share/nexsort/logs"
	defaultHistoryDB    = "~/.local/share/nexsort/history.db"
	defaultCategoryFile = "~/.config/nexsort/categories.json"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:       defaultLogDir,
			HistoryDB:    defaultHistoryDB,
			CategoryFile: defaultCategoryFile,
		},
		Sorting: Sorting{},
		Organizer: Organizer{
			PruneEmptyDirs: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
