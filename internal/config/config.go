package config

import (
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/chiadex/chiadex/internal/kvdb"
	"github.com/chiadex/chiadex/internal/logging"
)

func LoadConfigs(pathToConfig string) {
	// Set the file name of the configurations file
	viper.SetConfigFile(pathToConfig)

	// Handle errors reading the config file
	if err := viper.ReadInConfig(); err != nil {
		logging.L.Warn().Err(err).Msg("No config file detected")
	}

	/* set defaults */
	viper.SetDefault("http_host", HTTPHost)
	viper.SetDefault("db_engine", DBEngine)
	viper.SetDefault("page_size_default", PageSizeDefault)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_path", "")
	viper.SetDefault("log_to_console", true)

	// Bind viper keys to environment variables (optional, for backup)
	viper.AutomaticEnv()
	viper.BindEnv("http_host", "HTTP_HOST")
	viper.BindEnv("db_engine", "DB_ENGINE")
	viper.BindEnv("page_size_default", "PAGE_SIZE_DEFAULT")
	viper.BindEnv("log_level", "LOG_LEVEL")

	/* read and set config variables */
	HTTPHost = viper.GetString("http_host")
	DBEngine = viper.GetString("db_engine")
	PageSizeDefault = viper.GetUint32("page_size_default")
	LogLevel = viper.GetString("log_level")
	LogToConsole = viper.GetBool("log_to_console")
	if p := viper.GetString("log_path"); p != "" {
		LogsPath = p
	}

	switch DBEngine {
	case kvdb.EnginePebble, kvdb.EngineLevelDB:
	default:
		logging.L.Fatal().Msgf("unknown db engine %q", DBEngine)
		return
	}

	if PageSizeDefault == 0 {
		logging.L.Warn().Msg("page_size_default set to 0, falling back to 50")
		PageSizeDefault = 50
	}

	switch LogLevel {
	case "trace":
		logging.SetLogLevel(zerolog.TraceLevel)
	case "info":
		logging.SetLogLevel(zerolog.InfoLevel)
	case "debug":
		logging.SetLogLevel(zerolog.DebugLevel)
	case "warn":
		logging.SetLogLevel(zerolog.WarnLevel)
	case "error":
		logging.SetLogLevel(zerolog.ErrorLevel)
	}

	logging.L.Info().Msgf("db_engine: %s", DBEngine)
	logging.L.Info().Msgf("http_host: %s", HTTPHost)
	logging.L.Info().Msgf("page_size_default: %d", PageSizeDefault)
}
