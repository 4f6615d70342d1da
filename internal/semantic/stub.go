//go:build !semantic

package semantic

import (
	"context"

	"github.com/anthropics/cmdschema/internal/schema"
)

func enabled() bool {
	return false
}

func cluster(_ context.Context, _ schema.SchemaPackage) ([]Hint, error) {
	return nil, nil
}
