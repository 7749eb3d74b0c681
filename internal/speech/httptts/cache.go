package httptts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/at-ishikawa/literacy/internal/speech"
)

// AudioCache stores synthesized audio on disk, one file per utterance.
type AudioCache struct {
	rootDir string
}

func NewAudioCache(cacheDirectory string) *AudioCache {
	return &AudioCache{
		rootDir: cacheDirectory,
	}
}

func cacheKey(text string, options speech.Options) string {
	sum := sha256.Sum256([]byte(text + "\x00" + options.Locale + "\x00" +
		strconv.FormatFloat(options.Rate, 'f', -1, 64) + "\x00" +
		strconv.FormatFloat(options.Pitch, 'f', -1, 64)))
	return hex.EncodeToString(sum[:])
}

func (cache *AudioCache) filePath(key string) string {
	return filepath.Join(cache.rootDir, key+".mp3")
}

// fetch returns the path of the cached audio for key, calling f to produce it when missing.
func (cache *AudioCache) fetch(key string, f func() ([]byte, error)) (string, error) {
	localFilePath := cache.filePath(key)
	if _, err := os.Stat(localFilePath); err == nil {
		return localFilePath, nil
	}

	contents, err := f()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cache.rootDir, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll > %w", err)
	}
	// write through a temp file so that a concurrent reader never sees a partial file
	file, err := os.CreateTemp(cache.rootDir, key+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("os.CreateTemp > %w", err)
	}
	tmpPath := file.Name()
	if _, err := file.Write(contents); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("file.Write > %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("file.Close > %w", err)
	}
	if err := os.Rename(tmpPath, localFilePath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("os.Rename > %w", err)
	}
	return localFilePath, nil
}
