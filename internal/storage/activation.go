// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/toeirei/activation-console/internal/model"
)

// ActivationKey is the record holding the locally persisted activation.
const ActivationKey = "activation/persisted"

// ActivationStorage keeps the engine's local snapshot.
type ActivationStorage struct {
	store *Store
}

// NewActivationStorage wraps a Store.
func NewActivationStorage(s *Store) *ActivationStorage {
	return &ActivationStorage{store: s}
}

// StorageID describes the backing store.
func (a *ActivationStorage) StorageID() string { return a.store.ID() }

// Load returns the persisted snapshot. Nothing stored yields an empty
// snapshot, not an error.
func (a *ActivationStorage) Load(ctx context.Context) (model.PersistentData, error) {
	var data model.PersistentData
	raw, err := a.store.Get(ctx, ActivationKey)
	if errors.Is(err, ErrNotFound) {
		return data, nil
	}
	if err != nil {
		return data, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.PersistentData{}, fmt.Errorf("decode persisted activation: %w", err)
	}
	return data, nil
}

// Save replaces the persisted snapshot.
func (a *ActivationStorage) Save(ctx context.Context, data model.PersistentData) error {
	if data.IsEmpty() {
		return a.Clear(ctx)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode persisted activation: %w", err)
	}
	return a.store.Put(ctx, ActivationKey, raw)
}

// Clear drops the persisted snapshot.
func (a *ActivationStorage) Clear(ctx context.Context) error {
	return a.store.Delete(ctx, ActivationKey)
}
