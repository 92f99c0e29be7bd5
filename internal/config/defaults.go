package config

const (
	defaultDataDir          = "~/.local/share/meetscribe"
	defaultLogDir           = "~/.local/share/meetscribe/logs"
	defaultStateDBName      = "meetscribe.db"
	defaultArchiveBaseURL   = "https://archive.org"
	defaultLookbackDays     = 31
	defaultSearchRows       = 100
	defaultRequestTimeout   = 30
	defaultDownloadTimeout  = 3600
	defaultCacheTTLSeconds  = 3600
	defaultWhisperXModel    = "large-v3"
	defaultVADMethod        = "silero"
	defaultLanguage         = "en"
	defaultBeamSize         = 5
	defaultFFmpegBinary     = "ffmpeg"
	defaultMaxDocumentBytes = 345 * 1000
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"

	// FileIdentifierTitle names artifacts after the archive item title.
	FileIdentifierTitle = "title"
	// FileIdentifierIdentifier names artifacts after the archive identifier.
	FileIdentifierIdentifier = "identifier"
)

// DefaultPreferredFormats lists the archive file formats accepted as the source video.
var DefaultPreferredFormats = []string{"h.264"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Archive: Archive{
			BaseURL:          defaultArchiveBaseURL,
			PreferredFormats: append([]string(nil), DefaultPreferredFormats...),
			LookbackDays:     defaultLookbackDays,
			SearchRows:       defaultSearchRows,
			RequestTimeout:   defaultRequestTimeout,
			DownloadTimeout:  defaultDownloadTimeout,
			CacheTTLSeconds:  defaultCacheTTLSeconds,
		},
		Transcription: Transcription{
			WhisperXModel: defaultWhisperXModel,
			VADMethod:     defaultVADMethod,
			Language:      defaultLanguage,
			BeamSize:      defaultBeamSize,
		},
		FFmpeg: FFmpeg{
			Binary: defaultFFmpegBinary,
		},
		Output: Output{
			MaxDocumentBytes: defaultMaxDocumentBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
