package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RecordStore persists per-document settings blobs in a sidecar JSON file
// next to the documents it serves.
type RecordStore struct {
	Records map[string]json.RawMessage `json:"records"`
	Version string                     `json:"version"`

	storeDir  string
	storeFile string
}

func NewRecordStore(documentDir string) *RecordStore {
	storeDir := filepath.Join(documentDir, ".wikipen")
	storeFile := filepath.Join(storeDir, "records.json")

	return &RecordStore{
		Records:   make(map[string]json.RawMessage),
		Version:   "1.0",
		storeDir:  storeDir,
		storeFile: storeFile,
	}
}

func (rs *RecordStore) Load() error {
	data, err := os.ReadFile(rs.storeFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read record store: %w", err)
	}

	if err := json.Unmarshal(data, rs); err != nil {
		return fmt.Errorf("failed to parse record store: %w", err)
	}

	return nil
}

func (rs *RecordStore) Save() error {
	if err := os.MkdirAll(rs.storeDir, 0755); err != nil {
		return fmt.Errorf("failed to create record store directory: %w", err)
	}

	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record store: %w", err)
	}

	if err := os.WriteFile(rs.storeFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write record store: %w", err)
	}

	return nil
}

func (rs *RecordStore) Get(name string) ([]byte, bool) {
	blob, ok := rs.Records[rs.normalizeName(name)]
	return blob, ok
}

func (rs *RecordStore) Set(name string, blob []byte) {
	rs.Records[rs.normalizeName(name)] = json.RawMessage(blob)
}

func (rs *RecordStore) Remove(name string) {
	delete(rs.Records, rs.normalizeName(name))
}

// normalizeName keys records by base filename so absolute and relative
// spellings of the same document share one entry.
func (rs *RecordStore) normalizeName(name string) string {
	return filepath.Base(name)
}
