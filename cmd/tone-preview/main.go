package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/medimind-backend/internal/alert"
	"github.com/vcscsvcscs/medimind-backend/internal/azure"
)

// tone-preview renders every palette tone to WAV files for listening checks and, when
// Azure Storage credentials are set, verifies the tone upload and download round trip.
func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	outDir := "tones"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	sampleRate := alert.DefaultSampleRate
	if raw := os.Getenv("ALERT_TONE_SAMPLE_RATE"); raw != "" {
		sampleRate, err = strconv.Atoi(raw)
		if err != nil {
			logger.Fatal("Invalid ALERT_TONE_SAMPLE_RATE", zap.String("value", raw), zap.Error(err))
		}
	}

	logger.Info("=== Rendering tone palette ===", zap.String("dir", outDir), zap.Int("sample_rate", sampleRate))
	rendered, err := renderPalette(outDir, sampleRate, logger)
	if err != nil {
		logger.Fatal("Tone rendering failed", zap.Error(err))
	}

	accountName := os.Getenv("AZURE_STORAGE_ACCOUNT_NAME")
	accountKey := os.Getenv("AZURE_STORAGE_ACCOUNT_KEY")
	container := os.Getenv("AZURE_STORAGE_CONTAINER")
	if container == "" {
		container = "medimind"
	}

	if accountName == "" || accountKey == "" {
		logger.Info("Azure Storage credentials not set, skipping blob round trip")
		return
	}

	logger.Info("=== Testing tone blob round trip ===", zap.String("container", container))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := verifyBlobRoundTrip(ctx, accountName, accountKey, container, rendered, logger); err != nil {
		logger.Fatal("Blob round trip failed", zap.Error(err))
	}
	logger.Info("Blob round trip passed")
}

func renderPalette(dir string, sampleRate int, logger *zap.Logger) (map[string][]byte, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	names := alert.Names()
	for _, name := range alert.Names() {
		if name != alert.ToneUrgent {
			names = append(names, alert.ToneUrgent+"-"+name)
		}
	}

	rendered := make(map[string][]byte, len(names))
	for _, name := range names {
		tone, ok := alert.Lookup(name)
		if !ok {
			continue
		}

		data, err := alert.RenderWAV(tone, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", name, err)
		}

		path := filepath.Join(dir, alert.Filename(name))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}

		rendered[name] = data
		logger.Info("Tone rendered",
			zap.String("tone", name),
			zap.Duration("length", tone.Length()),
			zap.Int("size_bytes", len(data)),
			zap.String("file", path),
		)
	}

	return rendered, nil
}

func verifyBlobRoundTrip(ctx context.Context, accountName, accountKey, container string, rendered map[string][]byte, logger *zap.Logger) error {
	client, err := azure.NewBlobStorageClient(accountName, accountKey, container, logger)
	if err != nil {
		return fmt.Errorf("failed to create Blob Storage client: %w", err)
	}

	data, ok := rendered[alert.ToneDefault]
	if !ok {
		return fmt.Errorf("default tone was not rendered")
	}

	filename := fmt.Sprintf("preview-%d.wav", time.Now().Unix())
	blobName, err := client.UploadTone(ctx, filename, data)
	if err != nil {
		return fmt.Errorf("tone upload failed: %w", err)
	}
	logger.Info("Tone uploaded", zap.String("blob_name", blobName))

	downloaded, err := client.DownloadTone(ctx, blobName)
	if err != nil {
		return fmt.Errorf("tone download failed: %w", err)
	}
	if !bytes.Equal(downloaded, data) {
		return fmt.Errorf("downloaded tone doesn't match uploaded tone")
	}

	logger.Info("Tone downloaded and verified", zap.Int("size_bytes", len(downloaded)))
	return nil
}
