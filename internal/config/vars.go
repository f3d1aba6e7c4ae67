package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/chiadex/chiadex/internal/logging"
)

const (
	ConfigFileName       string = "chiadex.toml"
	DefaultBaseDirectory string = "~/.chiadex"
)

var (
	BaseDirectory = ""
	DBPath        = ""
	LogsPath      = ""

	HTTPHost = "127.0.0.1:8000"
)

var (
	// DBEngine selects the storage backend, "pebble" or "leveldb".
	DBEngine = "pebble"

	LogLevel     = "info"
	LogToConsole = true

	// PageSizeDefault is the block listing page size when a request names none.
	PageSizeDefault uint32 = 50
)

// one has to call SetDirectories otherwise config.DBPath will be empty
func SetDirectories() {
	BaseDirectory = resolvePath(BaseDirectory)

	DBPath = BaseDirectory + "/data"
	LogsPath = BaseDirectory + "/logs"
}

func resolvePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			logging.L.Fatal().Err(err).Msg("could not resolve home directory")
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
