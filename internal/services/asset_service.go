package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pier/internal/repositories"
	"pier/internal/validation"
	"pier/models"
)

type assetService struct {
	stores     repositories.AssetRepository[models.Store]
	warehouses repositories.AssetRepository[models.Warehouse]
	items      repositories.AssetRepository[models.Item]
}

var _ AssetService = (*assetService)(nil)

func NewAssetService(store repositories.Store) (AssetService, error) {
	if store == nil {
		return nil, errors.New("asset service: store is required")
	}
	return &assetService{
		stores:     store.Stores(),
		warehouses: store.Warehouses(),
		items:      store.Items(),
	}, nil
}

func (s *assetService) CreateStore(ctx context.Context, cmd CreateAssetCommand) (models.Store, error) {
	if err := validateAsset(&cmd); err != nil {
		return models.Store{}, err
	}
	store := models.Store{Name: cmd.Name}
	if err := create(ctx, s.stores, &store, "store"); err != nil {
		return models.Store{}, err
	}
	return store, nil
}

func (s *assetService) GetStore(ctx context.Context, storeID int64) (models.Store, error) {
	return get(ctx, s.stores, storeID, "store")
}

func (s *assetService) CreateWarehouse(ctx context.Context, cmd CreateAssetCommand) (models.Warehouse, error) {
	if err := validateAsset(&cmd); err != nil {
		return models.Warehouse{}, err
	}
	warehouse := models.Warehouse{Name: cmd.Name}
	if err := create(ctx, s.warehouses, &warehouse, "warehouse"); err != nil {
		return models.Warehouse{}, err
	}
	return warehouse, nil
}

func (s *assetService) GetWarehouse(ctx context.Context, warehouseID int64) (models.Warehouse, error) {
	return get(ctx, s.warehouses, warehouseID, "warehouse")
}

func (s *assetService) CreateItem(ctx context.Context, cmd CreateItemCommand) (models.Item, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Description = strings.TrimSpace(cmd.Description)
	if err := validation.Struct(cmd); err != nil {
		return models.Item{}, fmt.Errorf("%w: %w", ErrAssetInvalidInput, err)
	}
	item := models.Item{Name: cmd.Name, Description: cmd.Description}
	if err := create(ctx, s.items, &item, "item"); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

func (s *assetService) GetItem(ctx context.Context, itemID int64) (models.Item, error) {
	return get(ctx, s.items, itemID, "item")
}

func validateAsset(cmd *CreateAssetCommand) error {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := validation.Struct(*cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrAssetInvalidInput, err)
	}
	return nil
}

func create[T any](ctx context.Context, repo repositories.AssetRepository[T], asset *T, kind string) error {
	if err := repo.Insert(ctx, asset); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

func get[T any](ctx context.Context, repo repositories.AssetRepository[T], id int64, kind string) (T, error) {
	asset, err := repo.FindByID(ctx, id)
	if err != nil {
		var zero T
		if repositories.IsNotFound(err) {
			return zero, fmt.Errorf("%w: %s %d", ErrAssetNotFound, kind, id)
		}
		return zero, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return asset, nil
}
