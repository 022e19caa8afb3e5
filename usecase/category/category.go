package category

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

type UseCase struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
}

func New(categories repository.CategoryRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{categories: categories, logger: logger}
}

type ListInput struct {
	Type            string
	SchoolID        string
	ParentID        string
	CreatedBy       string
	IncludeInactive bool
}

// shared is every visibility other than private.
var shared = []domain.CategoryVisibility{
	domain.VisibilityFamily,
	domain.VisibilityClass,
	domain.VisibilitySchool,
	domain.VisibilityPublic,
}

// List returns active categories the caller can use. Non-admins see shared and system categories
// plus their own private ones.
func (uc *UseCase) List(ctx context.Context, p *domain.Principal, in ListInput) ([]domain.TaskCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	filter := repository.CategoryFilter{
		Type:     in.Type,
		SchoolID: in.SchoolID,
		ParentID: in.ParentID,
	}
	if !in.IncludeInactive || !p.Role.IsAdmin() {
		active := true
		filter.Active = &active
	}
	if p.Role.IsAdmin() {
		filter.CreatedBy = in.CreatedBy
	} else {
		filter.CreatedBy = p.UserID
		filter.Visibility = shared
	}
	return uc.categories.List(ctx, filter)
}

type Context string

const (
	ContextFamily   Context = "family"
	ContextSchool   Context = "school"
	ContextPersonal Context = "personal"
)

// ForContext lists the categories relevant to a family, school or personal setting.
func (uc *UseCase) ForContext(ctx context.Context, p *domain.Principal, c Context) ([]domain.TaskCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	active := true
	filter := repository.CategoryFilter{Active: &active}
	var types map[domain.CategoryType]bool

	switch c {
	case ContextFamily:
		filter.CreatedBy = p.UserID
		filter.Visibility = []domain.CategoryVisibility{domain.VisibilityFamily, domain.VisibilityPublic}
		types = map[domain.CategoryType]bool{
			domain.CategoryHome: true, domain.CategoryBehavior: true, domain.CategoryCustom: true,
		}
	case ContextSchool:
		filter.CreatedBy = p.UserID
		filter.SchoolID = p.SchoolID
		filter.Visibility = []domain.CategoryVisibility{domain.VisibilityClass, domain.VisibilitySchool, domain.VisibilityPublic}
		types = map[domain.CategoryType]bool{
			domain.CategoryAcademic: true, domain.CategoryAttendance: true,
			domain.CategoryExtracurricular: true, domain.CategoryBehavior: true,
		}
	case ContextPersonal:
		filter.CreatedBy = p.UserID
	default:
		return nil, domain.Invalid("Invalid context. Must be family, school or personal")
	}

	categories, err := uc.categories.List(ctx, filter)
	if err != nil || types == nil {
		return categories, err
	}
	matching := make([]domain.TaskCategory, 0, len(categories))
	for _, category := range categories {
		if types[category.Type] || category.CreatedBy == p.UserID {
			matching = append(matching, category)
		}
	}
	return matching, nil
}

func (uc *UseCase) Get(ctx context.Context, p *domain.Principal, id string) (*domain.TaskCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	category, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.Visibility == domain.VisibilityPrivate && !category.IsSystem &&
		category.CreatedBy != p.UserID && !p.Role.IsAdmin() {
		return nil, domain.Forbidden("Not authorized to view this category")
	}
	return category, nil
}

// CreateInput holds the user-supplied fields of a new category.
type CreateInput struct {
	Name              string
	Description       string
	Icon              string
	Color             string
	ParentCategory    string
	Type              domain.CategoryType
	DefaultPointValue int
	SchoolID          string
	Subject           string
	GradeLevel        int
	Visibility        domain.CategoryVisibility
	DisplayOrder      int
}

func (uc *UseCase) Create(ctx context.Context, p *domain.Principal, in CreateInput) (*domain.TaskCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(in.Name) == "" || in.Type == "" {
		return nil, domain.Invalid("Missing required fields: name and type are required")
	}
	if !domain.ValidCategoryType(in.Type) {
		return nil, domain.Invalid("Invalid category type")
	}
	if in.Type == domain.CategorySystem && p.Role != domain.RolePlatformAdmin {
		return nil, domain.Forbidden("Only platform administrators can create system categories")
	}
	if in.Visibility == "" {
		in.Visibility = domain.VisibilityPrivate
	}
	if !domain.ValidCategoryVisibility(in.Visibility) {
		return nil, domain.Invalid("Invalid category visibility")
	}
	if in.DefaultPointValue < 0 {
		return nil, domain.Invalid("defaultPointValue must not be negative")
	}
	if in.ParentCategory != "" {
		if _, err := uc.load(ctx, in.ParentCategory); err != nil {
			return nil, err
		}
	}

	category := &domain.TaskCategory{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Icon:              in.Icon,
		Color:             in.Color,
		ParentCategory:    in.ParentCategory,
		CreatedBy:         p.UserID,
		CreatorRole:       string(p.Role),
		Type:              in.Type,
		DefaultPointValue: in.DefaultPointValue,
		SchoolID:          in.SchoolID,
		Subject:           in.Subject,
		GradeLevel:        in.GradeLevel,
		IsSystem:          in.Type == domain.CategorySystem,
		Visibility:        in.Visibility,
		DisplayOrder:      in.DisplayOrder,
		IsActive:          true,
	}
	return uc.categories.Create(ctx, category)
}

// Patch lists the mutable category fields.
type Patch struct {
	Name              *string
	Description       *string
	Icon              *string
	Color             *string
	ParentCategory    *string
	DefaultPointValue *int
	Subject           *string
	GradeLevel        *int
	Visibility        *domain.CategoryVisibility
	DisplayOrder      *int
}

func (uc *UseCase) Update(ctx context.Context, p *domain.Principal, id string, patch Patch) (*domain.TaskCategory, error) {
	category, err := uc.editable(ctx, p, id, "modified")
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		category.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		category.Description = *patch.Description
	}
	if patch.Icon != nil {
		category.Icon = *patch.Icon
	}
	if patch.Color != nil {
		category.Color = *patch.Color
	}
	if patch.ParentCategory != nil {
		if *patch.ParentCategory == category.ID {
			return nil, domain.Invalid("a category cannot be its own parent")
		}
		category.ParentCategory = *patch.ParentCategory
	}
	if patch.DefaultPointValue != nil {
		if *patch.DefaultPointValue < 0 {
			return nil, domain.Invalid("defaultPointValue must not be negative")
		}
		category.DefaultPointValue = *patch.DefaultPointValue
	}
	if patch.Subject != nil {
		category.Subject = *patch.Subject
	}
	if patch.GradeLevel != nil {
		category.GradeLevel = *patch.GradeLevel
	}
	if patch.Visibility != nil {
		if !domain.ValidCategoryVisibility(*patch.Visibility) {
			return nil, domain.Invalid("Invalid category visibility")
		}
		category.Visibility = *patch.Visibility
	}
	if patch.DisplayOrder != nil {
		category.DisplayOrder = *patch.DisplayOrder
	}

	if err := uc.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete deactivates a category; tasks keep their category name.
func (uc *UseCase) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if _, err := uc.editable(ctx, p, id, "deleted"); err != nil {
		return err
	}
	return uc.categories.Deactivate(ctx, id)
}

// CreateDefaults seeds the built-in categories. Existing ones are left alone.
func (uc *UseCase) CreateDefaults(ctx context.Context, p *domain.Principal) ([]domain.TaskCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if p.Role != domain.RolePlatformAdmin {
		return nil, domain.Forbidden("Only platform administrators can create system categories")
	}
	defaults := domain.DefaultCategories()
	for i := range defaults {
		defaults[i].CreatedBy = p.UserID
		defaults[i].CreatorRole = "system"
	}
	created, err := uc.categories.EnsureSystem(ctx, defaults)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("default categories ensured", zap.Int("created", len(created)))
	return created, nil
}

func (uc *UseCase) editable(ctx context.Context, p *domain.Principal, id, verb string) (*domain.TaskCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	category, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.IsSystem && p.Role != domain.RolePlatformAdmin {
		return nil, domain.Forbidden("System categories cannot be " + verb)
	}
	if category.CreatedBy != p.UserID && !p.Role.IsAdmin() {
		return nil, domain.Forbidden("Not authorized to change this category")
	}
	return category, nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*domain.TaskCategory, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("Invalid category ID format")
	}
	return uc.categories.GetByID(ctx, id)
}
