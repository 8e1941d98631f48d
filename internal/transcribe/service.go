// Package transcribe turns base64 audio clips into transcript text via
// the configured speech provider, optionally archiving the raw clip.
package transcribe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mealvoice/server/internal/blob"
	"github.com/mealvoice/server/internal/speech"
)

// ErrInvalidAudio marks audio payloads that fail base64 decoding. The
// request never reaches the provider.
var ErrInvalidAudio = errors.New("audio payload is not valid base64")

// ErrAudioTooLarge marks decoded clips above the configured size cap.
var ErrAudioTooLarge = errors.New("audio payload exceeds size limit")

const defaultFormat = "webm"

// Service decodes, size-checks and transcribes audio clips.
type Service struct {
	transcriber   speech.Transcriber
	archive       blob.Store // nil when archiving is off
	maxAudioBytes int
	logger        *slog.Logger
}

func NewService(transcriber speech.Transcriber, archive blob.Store, maxAudioBytes int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		transcriber:   transcriber,
		archive:       archive,
		maxAudioBytes: maxAudioBytes,
		logger:        logger,
	}
}

// Transcribe decodes the base64 payload and forwards it to the speech
// provider. Decode failures are reported before any network call.
func (s *Service) Transcribe(ctx context.Context, audioBase64, format string) (speech.Result, error) {
	audio, err := base64.StdEncoding.DecodeString(strings.TrimSpace(audioBase64))
	if err != nil {
		return speech.Result{}, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	if len(audio) == 0 {
		return speech.Result{}, fmt.Errorf("%w: empty payload", ErrInvalidAudio)
	}
	if s.maxAudioBytes > 0 && len(audio) > s.maxAudioBytes {
		return speech.Result{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrAudioTooLarge, len(audio), s.maxAudioBytes)
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = defaultFormat
	}

	result, err := s.transcriber.Transcribe(ctx, audio, format)
	if err != nil {
		return speech.Result{}, err
	}

	s.archiveClip(ctx, audio, format)

	return result, nil
}

// archiveClip is best effort: a failed archive write never fails the
// transcription.
func (s *Service) archiveClip(ctx context.Context, audio []byte, format string) {
	if s.archive == nil {
		return
	}

	key := fmt.Sprintf("audio/%s.%s", uuid.NewString(), format)
	if _, err := s.archive.PutObject(ctx, key, audio, "audio/"+format); err != nil {
		s.logger.Warn("audio archive write failed", "key", key, "error", err)
		return
	}
	s.logger.Debug("audio clip archived", "key", key, "bytes", len(audio))
}
