package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/models"
	"hamyon/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	switch categoryType {
	case models.CategoryTypeIncome, models.CategoryTypeExpense:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	// Check if a category with the same name already exists for this user
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ? AND type = ?", userID, name, categoryType).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves a paginated list of categories for a user.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetUserCategoriesByType retrieves a paginated list of categories of a specific type for a user.
func (s *categoryService) GetUserCategoriesByType(userID string, categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ? AND type = ?", userID, categoryType)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory renames an existing category. The direction of a category
// is fixed at creation; changing it would silently flip historical totals.
func (s *categoryService) UpdateCategory(userID, categoryID, name string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	if err := s.db.Model(category).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// DeleteCategory deletes a category that is not referenced by any transaction.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	var txCount int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&txCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetOrCreateWellKnown returns the user's auto-created category for the
// given canonical key, creating it on first use. Lookup is keyed by
// (user, key) rather than by display name so repeated transfers never
// create duplicates even if display names change.
func (s *categoryService) GetOrCreateWellKnown(tx *gorm.DB, userID string, categoryType models.CategoryType, key, name string) (*models.Category, error) {
	if tx == nil {
		tx = s.db
	}

	var category models.Category
	err := tx.Where("user_id = ? AND well_known_key = ?", userID, key).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	category = models.Category{
		UserID:       userID,
		Name:         name,
		Type:         categoryType,
		WellKnownKey: &key,
	}
	if err := tx.Create(&category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
