package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cian_bot/internal/model"
)

// JSONFile implements Store as a flat JSON array of offer records, rewritten
// wholly after each append. The record grows without bound; every offer ever
// notified stays for the life of the deployment.
type JSONFile struct {
	path   string
	offers []model.Offer
	index  map[string]struct{}
}

// OpenJSONFile loads the known-offer record from path. A missing or empty
// file yields an empty record rather than an error.
func OpenJSONFile(path string) (*JSONFile, error) {
	s := &JSONFile{
		path:  path,
		index: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-provided path
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read known offers: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.offers); err != nil {
		return nil, fmt.Errorf("decode known offers: %w", err)
	}
	for _, o := range s.offers {
		s.index[o.Fingerprint()] = struct{}{}
	}
	return s, nil
}

// IsKnown reports whether an offer with the same full attribute set has been
// recorded before.
func (s *JSONFile) IsKnown(_ context.Context, offer model.Offer) (bool, error) {
	_, ok := s.index[offer.Fingerprint()]
	return ok, nil
}

// RecordAll appends the offers to the in-memory record, then rewrites the
// file atomically. A write failure is returned but does not roll back the
// in-memory append: a briefly unwritable disk must not cause recipients to
// be notified twice.
func (s *JSONFile) RecordAll(_ context.Context, offers []model.Offer) error {
	for _, o := range offers {
		s.offers = append(s.offers, o)
		s.index[o.Fingerprint()] = struct{}{}
	}
	return s.persist()
}

func (s *JSONFile) persist() error {
	data, err := json.Marshal(s.offers)
	if err != nil {
		return fmt.Errorf("encode known offers: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".known_offers-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write known offers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace known offers: %w", err)
	}
	return nil
}

// Close is a no-op; the file is only held open during rewrites.
func (s *JSONFile) Close() error {
	return nil
}
