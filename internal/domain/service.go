package domain

import (
	"context"
	"fmt"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/tx"
	"tradedesk/pkg/logger"
)

// CatalogService provides the CRUD workflow shared by all master data:
// validate, run hooks, write in a transaction.
type CatalogService[T entity.CatalogRecord] struct {
	repo       CatalogRepository[T]
	txManager  tx.Manager
	hooks      *HookRegistry[T]
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T entity.CatalogRecord] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
}

// NewCatalogService creates a catalog service from cfg.
func NewCatalogService[T entity.CatalogRecord](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// EntityName is used in errors and logs.
func (s *CatalogService[T]) EntityName() string {
	return s.entityName
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, idOrCode any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
}

// Create validates and inserts entity.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	entity.CatalogBase().EnsureID()
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterCreate, entity); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// GetByID returns the entity with entityID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID.String())
	}
	return entity, nil
}

// GetByCode returns the entity with code.
func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	entity, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return entity, s.normalizeGetErr(err, code)
	}
	return entity, nil
}

// Update validates and saves entity with optimistic locking.
func (s *CatalogService[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterUpdate, entity); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// Delete sets the deletion mark. Documents keep referencing the row.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}
	if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetDeletionMark(ctx, entityID, true); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
}

// Restore clears the deletion mark.
func (s *CatalogService[T]) Restore(ctx context.Context, entityID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, entityID, false)
	})
}

// BulkDelete marks every id as deleted independently.
func (s *CatalogService[T]) BulkDelete(ctx context.Context, ids []id.ID) BulkDeleteResult {
	return BulkDelete(ctx, ids, s.Delete)
}

// Upload upserts items by code in one transaction. All items are validated
// before anything is written.
func (s *CatalogService[T]) Upload(ctx context.Context, items []T) (UploadResult, error) {
	var res UploadResult
	for i, item := range items {
		if item.CatalogBase().Code == "" {
			return res, apperror.NewValidation("code is required").WithDetail("row", i+1)
		}
		if err := item.Validate(ctx); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return res, appErr.WithDetail("row", i+1)
			}
			return res, apperror.NewValidation(err.Error()).WithDetail("row", i+1)
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		res = UploadResult{}
		for _, item := range items {
			base := item.CatalogBase()
			existing, err := s.repo.GetByCode(ctx, base.Code)
			switch {
			case err == nil:
				prev := existing.CatalogBase()
				base.ID = prev.ID
				base.Version = prev.Version
				if err := s.repo.Update(ctx, item); err != nil {
					return fmt.Errorf("update %s %s: %w", s.entityName, base.Code, err)
				}
				res.Updated++
			case apperror.IsNotFound(err):
				if err := s.repo.Create(ctx, item); err != nil {
					return fmt.Errorf("create %s %s: %w", s.entityName, base.Code, err)
				}
				res.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return UploadResult{}, err
	}

	logger.Info(ctx, "catalog upload applied", "entity", s.entityName, "created", res.Created, "updated", res.Updated)
	return res, nil
}

// List returns one page of entities matching filter.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}
