package blob

import (
	"fmt"
	"strings"

	appcfg "github.com/mealvoice/server/internal/config"
)

type Logger interface {
	Printf(format string, v ...any)
}

// NewAudioArchive builds the clip archive for AUDIO_ARCHIVE_MODE.
// Mode off returns a nil store; callers treat nil as archiving disabled.
func NewAudioArchive(cfg *appcfg.Config, logger Logger) (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.AudioArchiveMode))
	if mode == "" {
		mode = appcfg.ArchiveModeOff
	}

	switch mode {
	case appcfg.ArchiveModeOff:
		logf(logger, "INFO audio archive: disabled")
		return nil, appcfg.ArchiveModeOff, nil

	case appcfg.ArchiveModeLocal:
		store, err := NewLocalStore(cfg.AudioArchiveDir)
		if err != nil {
			return nil, "", fmt.Errorf("AUDIO_ARCHIVE_MODE=local init failed: %w", err)
		}
		logf(logger, "INFO audio archive: mode=local dir=%s", cfg.AudioArchiveDir)
		return store, appcfg.ArchiveModeLocal, nil

	case appcfg.ArchiveModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			logf(logger, "FATAL audio archive: s3 config incomplete missing=%v", missing)
			logf(logger, "FATAL audio archive: %s", cfg.S3.DiagnosticsSummary())
			return nil, "", fmt.Errorf("AUDIO_ARCHIVE_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		logf(logger, "INFO audio archive: s3 ready %s", cfg.S3.DiagnosticsSummary())
		store, err := NewS3Store(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey)
		if err != nil {
			return nil, "", fmt.Errorf("AUDIO_ARCHIVE_MODE=s3 init failed: %w", err)
		}
		return store, appcfg.ArchiveModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported audio archive mode: %s", mode)
	}
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
