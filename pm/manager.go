package bbox_pm

import (
	"context"
	"fmt"
)

// PackageManager installs and removes packages in an offline root.
type PackageManager interface {
	// Name of the package manager binary, e.g. "opkg".
	Name() string

	// Update package index of the root.
	Update(ctx context.Context) error

	// Install packages into the root.
	Install(ctx context.Context, packages ...string) error

	// Remove packages from the root.
	Remove(ctx context.Context, packages ...string) error
}

// ApplyBatches refreshes the index once and then calls the package manager
// once per batch.
func ApplyBatches(ctx context.Context, pm PackageManager, batches []Batch) error {
	if err := pm.Update(ctx); err != nil {
		return fmt.Errorf("failed to update package index: %w", err)
	}

	for _, batch := range batches {
		var err error
		switch batch.Mode {
		case Install:
			err = pm.Install(ctx, batch.Packages...)
		case Remove:
			err = pm.Remove(ctx, batch.Packages...)
		}
		if err != nil {
			return fmt.Errorf("failed to %s batch of packages %v: %w", batch.Mode, batch.Packages, err)
		}
	}
	return nil
}
