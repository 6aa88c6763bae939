// Package filelink maintains the (entity type, entity id, tag) -> file
// mapping. Every operation takes the repository of the caller's
// transaction so link moves commit or roll back with the entity change
// they belong to.
package filelink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

// Key addresses one link slot.
type Key struct {
	EntityType types.EntityType
	EntityID   string
	Tag        types.FileTag
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.EntityType, k.EntityID, k.Tag)
}

// Attach creates a link in an empty slot. An occupied slot is reported as
// types.ErrDuplicateKey.
func Attach(ctx context.Context, links store.FileLinkStore, key Key, fileID string, at time.Time) (*types.FileLink, error) {
	link := &types.FileLink{
		ID:         utils.NanoID(),
		FileID:     fileID,
		EntityType: key.EntityType,
		EntityID:   key.EntityID,
		Tag:        key.Tag,
		CreatedAt:  at,
	}
	if err := links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to attach file %s to %s: %w", fileID, key, err)
	}
	return link, nil
}

// Retag points the slot at fileID. Whatever the slot held before is
// deleted first and a fresh row is inserted, so the slot always ends up
// with exactly one link.
func Retag(ctx context.Context, links store.FileLinkStore, key Key, fileID string, at time.Time) (*types.FileLink, error) {
	if err := links.Delete(ctx, key.EntityType, key.EntityID, key.Tag); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", key, err)
	}
	return Attach(ctx, links, key, fileID, at)
}

// Copy links the file found under from onto to. The source link stays in
// place. It reports false without error when from holds nothing.
func Copy(ctx context.Context, links store.FileLinkStore, from, to Key, at time.Time) (bool, error) {
	src, err := links.Link(ctx, from.EntityType, from.EntityID, from.Tag)
	if err != nil {
		if errors.Is(err, types.ErrFileLinkNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up %s: %w", from, err)
	}

	if _, err := Retag(ctx, links, to, src.FileID, at); err != nil {
		return false, err
	}
	return true, nil
}

// Remove empties the slot. Removing an empty slot is not an error.
func Remove(ctx context.Context, links store.FileLinkStore, key Key) error {
	if err := links.Delete(ctx, key.EntityType, key.EntityID, key.Tag); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// FileID resolves the file held by the slot, or types.ErrFileLinkNotFound.
func FileID(ctx context.Context, links store.FileLinkStore, key Key) (string, error) {
	link, err := links.Link(ctx, key.EntityType, key.EntityID, key.Tag)
	if err != nil {
		return "", err
	}
	return link.FileID, nil
}
