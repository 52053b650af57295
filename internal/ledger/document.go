// Package ledger keeps the stock and order ledgers as whole JSON documents.
// Every mutation loads the full document, changes it in memory and writes it
// back before returning.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Document is one persisted key-value document.
type Document interface {
	// Load decodes the document into v. A document that does not exist yet
	// leaves v untouched.
	Load(ctx context.Context, v any) error
	Save(ctx context.Context, v any) error
}

type FileDocument struct {
	Path string
}

func NewFileDocument(path string) *FileDocument {
	return &FileDocument{Path: path}
}

func (d *FileDocument) Load(_ context.Context, v any) error {
	b, err := os.ReadFile(d.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ledger: read %s: %w", d.Path, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("ledger: decode %s: %w", d.Path, err)
	}
	return nil
}

// Save writes through a temp file in the same directory and renames it over
// the target, so readers never see a half-written ledger.
func (d *FileDocument) Save(_ context.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: encode %s: %w", d.Path, err)
	}
	dir := filepath.Dir(d.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.Path)+".*")
	if err != nil {
		return fmt.Errorf("ledger: temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("ledger: write %s: %w", d.Path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("ledger: sync %s: %w", d.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger: close %s: %w", d.Path, err)
	}
	if err := os.Rename(tmp.Name(), d.Path); err != nil {
		return fmt.Errorf("ledger: replace %s: %w", d.Path, err)
	}
	return nil
}

// MemoryDocument keeps the encoded document in memory. Saves counts writes.
type MemoryDocument struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func NewMemoryDocument() *MemoryDocument { return &MemoryDocument{} }

func (d *MemoryDocument) Load(_ context.Context, v any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.data) == 0 {
		return nil
	}
	return json.Unmarshal(d.data, v)
}

func (d *MemoryDocument) Save(_ context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.data = b
	d.saves++
	d.mu.Unlock()
	return nil
}

func (d *MemoryDocument) Saves() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saves
}
