package config

const (
	defaultLogDir                = "~/.local/share/vidmeta/logs"
	defaultHistoryPath           = "~/.local/share/vidmeta/history.db"
	defaultFFprobeBinary         = "ffprobe"
	defaultFFprobeTimeoutSeconds = 60
	defaultFetchTimeoutSeconds   = 300
	defaultFetchMaxRedirects     = 10
	defaultFetchMaxBytes         = 8 << 30
	defaultFetchUserAgent        = "vidmeta/dev"
	defaultOperation             = "extractMetadata"
	defaultOutputField           = "metadata"
	defaultHistoryRetentionDays  = 30
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir:  defaultScratchDir(),
			LogDir:      defaultLogDir,
			HistoryPath: defaultHistoryPath,
		},
		FFprobe: FFprobe{
			Binary:         defaultFFprobeBinary,
			TimeoutSeconds: defaultFFprobeTimeoutSeconds,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeoutSeconds,
			MaxRedirects:   defaultFetchMaxRedirects,
			MaxBytes:       defaultFetchMaxBytes,
			UserAgent:      defaultFetchUserAgent,
		},
		Pipeline: Pipeline{
			Operation:   defaultOperation,
			OutputField: defaultOutputField,
		},
		History: History{
			RetentionDays: defaultHistoryRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
