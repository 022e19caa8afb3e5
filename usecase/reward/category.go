package reward

import (
	"context"
	"strings"

	"github.com/amankumar-in/univance/domain"
)

func (uc *UseCase) ListCategories(ctx context.Context, p *domain.Principal, includeInactive bool) ([]domain.RewardCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.categories.List(ctx, includeInactive && p.Role.IsAdmin())
}

type CategoryInput struct {
	Name         string
	Description  string
	Type         string
	Icon         string
	Color        string
	Visibility   string
	ParentID     string
	DisplayOrder int
}

func (uc *UseCase) CreateCategory(ctx context.Context, p *domain.Principal, in CategoryInput) (*domain.RewardCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if !canCreate(p) {
		return nil, domain.Forbidden("Not authorized to create reward categories")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Type) == "" {
		return nil, domain.Invalid("Missing required fields: name and type are required")
	}
	isSystem := in.Type == "system"
	if isSystem && p.Role != domain.RolePlatformAdmin {
		return nil, domain.Forbidden("Only platform administrators can create system categories")
	}
	if in.Visibility == "" {
		in.Visibility = string(domain.VisibilityPrivate)
	}
	if in.ParentID != "" {
		if _, err := uc.categories.GetByID(ctx, in.ParentID); err != nil {
			return nil, err
		}
	}
	return uc.categories.Create(ctx, &domain.RewardCategory{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Type:         in.Type,
		Icon:         in.Icon,
		Color:        in.Color,
		Visibility:   in.Visibility,
		ParentID:     in.ParentID,
		CreatedBy:    p.UserID,
		CreatorRole:  p.Role,
		IsSystem:     isSystem,
		DisplayOrder: in.DisplayOrder,
		IsActive:     true,
	})
}

// UpdateCategory overwrites the non-empty fields of the input.
func (uc *UseCase) UpdateCategory(ctx context.Context, p *domain.Principal, id string, in CategoryInput) (*domain.RewardCategory, error) {
	category, err := uc.editableCategory(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		category.Name = strings.TrimSpace(in.Name)
	}
	if in.Description != "" {
		category.Description = in.Description
	}
	if in.Icon != "" {
		category.Icon = in.Icon
	}
	if in.Color != "" {
		category.Color = in.Color
	}
	if in.Visibility != "" {
		category.Visibility = in.Visibility
	}
	if in.ParentID != "" {
		if in.ParentID == category.ID {
			return nil, domain.Invalid("a category cannot be its own parent")
		}
		category.ParentID = in.ParentID
	}
	if in.DisplayOrder != 0 {
		category.DisplayOrder = in.DisplayOrder
	}
	if err := uc.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (uc *UseCase) DeleteCategory(ctx context.Context, p *domain.Principal, id string) error {
	if _, err := uc.editableCategory(ctx, p, id); err != nil {
		return err
	}
	return uc.categories.Deactivate(ctx, id)
}

func (uc *UseCase) editableCategory(ctx context.Context, p *domain.Principal, id string) (*domain.RewardCategory, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	category, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.IsSystem && p.Role != domain.RolePlatformAdmin {
		return nil, domain.Forbidden("System categories cannot be changed")
	}
	if category.CreatedBy != p.UserID && !p.Role.IsAdmin() {
		return nil, domain.Forbidden("Not authorized to change this category")
	}
	return category, nil
}
