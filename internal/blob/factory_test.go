package blob

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	appcfg "github.com/mealvoice/server/internal/config"
)

func TestNewAudioArchiveOff(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewAudioArchive(&appcfg.Config{
		AudioArchiveMode: appcfg.ArchiveModeOff,
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.ArchiveModeOff {
		t.Fatalf("expected mode=off, got %s", mode)
	}
	if store != nil {
		t.Fatal("expected nil store when archiving is off")
	}
	if !strings.Contains(buf.String(), "disabled") {
		t.Fatalf("expected disabled log, got: %s", buf.String())
	}
}

func TestNewAudioArchiveLocal(t *testing.T) {
	store, mode, err := NewAudioArchive(&appcfg.Config{
		AudioArchiveMode: appcfg.ArchiveModeLocal,
		AudioArchiveDir:  t.TempDir(),
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.ArchiveModeLocal || store == nil {
		t.Fatalf("expected local store, got mode=%q store=%v", mode, store)
	}

	ctx := context.Background()
	if _, err := store.PutObject(ctx, "audio/test.webm", []byte("clip"), "audio/webm"); err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	data, err := store.GetObject(ctx, "audio/test.webm")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if string(data) != "clip" {
		t.Errorf("data = %q", data)
	}
	if err := store.DeleteObject(ctx, "audio/test.webm"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if _, err := store.GetObject(ctx, "audio/test.webm"); err == nil {
		t.Error("expected error reading deleted object")
	}
}

func TestNewAudioArchiveS3MissingRequiredReturnsError(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewAudioArchive(&appcfg.Config{
		AudioArchiveMode: appcfg.ArchiveModeS3,
		S3: appcfg.S3Config{
			Endpoint: "https://s3.example.com",
		},
	}, logger)
	if err == nil {
		t.Fatal("expected error when mode=s3 and required env are missing")
	}
	if store != nil || mode != "" {
		t.Fatalf("expected nil store and empty mode on error, got store=%v mode=%q", store, mode)
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Fatalf("expected missing required config error, got: %v", err)
	}
}
