package settings

import (
	"context"
	"fmt"
	"strconv"

	pkgerrors "github.com/heatparts/storefront/pkg/errors"
)

// Store is the key/value contract other packages depend on.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type flagRepository interface {
	Store
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
}

// Flags exposes the onboarding and notification-prompt flags.
type Flags struct {
	repo flagRepository
}

// NewFlags builds the flag service.
func NewFlags(repo flagRepository) (*Flags, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &Flags{repo: repo}, nil
}

// All returns every flag, defaulting unset flags to false.
func (f *Flags) All(ctx context.Context) (map[string]bool, error) {
	stored, err := f.repo.GetMany(ctx, FlagKeys)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load flags")
	}
	out := make(map[string]bool, len(FlagKeys))
	for _, key := range FlagKeys {
		value, _ := strconv.ParseBool(stored[key])
		out[key] = value
	}
	return out, nil
}

// Set stores a flag value.
func (f *Flags) Set(ctx context.Context, key string, value bool) error {
	if !IsFlag(key) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown flag %q", key)).
			WithDetails(map[string]any{"allowed": FlagKeys})
	}
	if err := f.repo.Set(ctx, key, strconv.FormatBool(value)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save flag")
	}
	return nil
}
