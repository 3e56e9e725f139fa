package config

const (
	defaultConfigPath    = "~/.config/redactor/config.toml"
	projectConfigName    = "redactor.toml"
	defaultStagingDir    = "~/.local/share/redactor/staging"
	defaultOutputDir     = "."
	defaultLogDir        = "~/.local/share/redactor/logs"
	defaultStateDir      = "~/.local/share/redactor"
	defaultAPIBind       = "127.0.0.1:7488"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultEngineTimeout = 3600
	defaultExportFile    = "redacted.mp4"
	defaultExportPreset  = "veryfast"
	defaultExportCRF     = 23
	defaultMinLanes      = 2
	defaultMaxLanes      = 4
	defaultNtfyTimeout   = 10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
			APIBind:    defaultAPIBind,
		},
		Engine: Engine{
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			TimeoutSeconds: defaultEngineTimeout,
		},
		Export: Export{
			Filename:     defaultExportFile,
			Preset:       defaultExportPreset,
			CRF:          defaultExportCRF,
			IncludeAudio: true,
		},
		Timeline: Timeline{
			MinLanes: defaultMinLanes,
			MaxLanes: defaultMaxLanes,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
			NotifySuccess:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
