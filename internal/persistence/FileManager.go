package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"wagerd/internal/models"
	"wagerd/internal/persistence/interfaces"
	"wagerd/internal/providers"
	"wagerd/internal/services"

	json "github.com/goccy/go-json"
)

var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type FileManager struct {
	service    services.TrackerServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.TrackerServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

// SaveToFile writes the tracker snapshot through a temp file and a rename so a
// crash never leaves a half-written snapshot behind.
func (f *FileManager) SaveToFile(fileName string) error {
	storage := f.service.GetSnapshot()

	jsonData, err := json.Marshal(storage)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(fileName); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores every reader found in the snapshot. A missing file is
// an empty state, not an error.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var storage models.Storage
	if err := json.Unmarshal(decompressedData, &storage); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	switch {
	case storage.Version > models.StorageVersion:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, storage.Version)
	case storage.Version == 0 && storage.Readers == nil:
		return fmt.Errorf("%w: no version and no readers", ErrUnsupportedVersion)
	case storage.Version == 0:
		f.logger.Warnf(providers.TypeApp, "Snapshot %s has no version, assuming v%d", fileName, models.StorageVersion)
	}

	for reader, rd := range storage.Readers {
		if rd == nil {
			continue
		}
		if rd.Progress == nil {
			rd.Progress = make(map[string]*models.ProgressRecord)
		}
		f.service.PutReaderData(reader, rd)
	}
	f.logger.Infof(providers.TypeApp, "Restored %d readers from %s", len(storage.Readers), fileName)
	return nil
}
