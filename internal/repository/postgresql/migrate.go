package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the payroll tables when they do not exist yet.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := GetQuerier(ctx, db).Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
