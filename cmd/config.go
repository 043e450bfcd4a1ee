package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "shcov"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	reportFlagName      = "report"
	outputFlagName      = "output"
	excludeFlagName     = "exclude"
	runParallelFlagName = "parallel"
	verboseFlagName     = "verbose"
	logFileFlagName     = "log-file"
	explainFlagName     = "explain"

	runParallelConfigKey = "run.parallel"
	excludeConfigKey     = "paths.exclude"

	defaultReportPath  = "shcov-coverage.yaml"
	defaultOutputPath  = ""
	defaultRunParallel = 1

	envPrefix = "SHCOV"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".shcov.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// configEntry is one setting of shcov.yaml with its default.
type configEntry struct {
	key     string
	value   any
	comment string
}

// configEntries lists every setting in the order `shcov init` writes them.
var configEntries = []configEntry{
	{configVersionKey, currentConfigVersion, "format of this file"},
	{reportFlagName, defaultReportPath, "coverage report read by relevant, mark and list (YAML or JSON)"},
	{outputFlagName, defaultOutputPath, "where mark writes the updated report; empty rewrites the report in place"},
	{runParallelConfigKey, defaultRunParallel, "scripts scanned in parallel by mark"},
	{excludeConfigKey, []string{}, "regular expressions; matching script paths are skipped"},
	{logFilenameKey, defaultLogFilename, "rotating log file"},
	{logLevelKey, defaultLogLevel, "debug, info, warn, error or a numeric slog level"},
	{logVerboseKey, defaultLogVerbose, "same as --verbose: log at debug level"},
	{logMaxSizeKey, defaultLogMaxSize, "megabytes before the log is rotated"},
	{logMaxBackupsKey, defaultLogMaxBackups, "rotated logs to keep"},
	{logMaxAgeKey, defaultLogMaxAge, "days to keep rotated logs"},
	{logCompressKey, defaultLogCompress, "gzip rotated logs"},
}

// configErr is set when shcov.yaml exists but cannot be read. Commands
// return it instead of running with half the settings.
var configErr error

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	for _, entry := range configEntries {
		viper.SetDefault(entry.key, entry.value)
	}

	configErr = readConfig()
}

// readConfig loads shcov.yaml when there is one. A missing file is fine.
func readConfig() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("read config %s: %w", viper.ConfigFileUsed(), err)
}

// checkConfig fails for unreadable config files and for files written by a
// newer shcov.
func checkConfig() error {
	if configErr != nil {
		return configErr
	}

	if version := viper.GetInt(configVersionKey); version > currentConfigVersion {
		return fmt.Errorf("config %s has version %d, this shcov reads up to %d",
			viper.ConfigFileUsed(), version, currentConfigVersion)
	}

	return nil
}
