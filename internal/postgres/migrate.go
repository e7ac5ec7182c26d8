package postgres

import (
	"context"
	"fmt"

	"pier/models"
)

// Migrate creates or updates every table with its indexes and foreign keys.
func (c *Client) Migrate(ctx context.Context) error {
	err := c.db.WithContext(ctx).AutoMigrate(
		&models.Customer{},
		&models.CustomerAddress{},
		&models.Store{},
		&models.Warehouse{},
		&models.Item{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
