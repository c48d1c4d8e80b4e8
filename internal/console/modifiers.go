package console

import (
	"context"
	"fmt"
	"net/http"

	"github.com/odg-delivery/console/internal/api"
)

// ModifierGroup is a set of add-ons, such as "Extras", that items can offer
type ModifierGroup struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
}

// ModifierOption is one add-on inside a group
type ModifierOption struct {
	ID         int64  `json:"id" validate:"required"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

type modifierGroupRequest struct {
	VendorID int64  `json:"vendorId" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required"`
}

type modifierOptionRequest struct {
	GroupID    int64  `json:"groupId" validate:"required,gt=0"`
	Name       string `json:"name" validate:"required"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
}

type created struct {
	ID int64 `json:"id" validate:"required"`
}

// CategoryPosition places a category in the vendor's ordering
type CategoryPosition struct {
	ID        int64 `json:"id" validate:"required,gt=0"`
	SortIndex int   `json:"sort_index" validate:"gte=0"`
}

type reorderRequest struct {
	Order []CategoryPosition `json:"order" validate:"required,min=1,dive"`
}

// ModifierGroups returns the vendor's modifier groups
func (s *Service) ModifierGroups(ctx context.Context, vendorID int64) ([]ModifierGroup, error) {
	return api.Get[[]ModifierGroup](ctx, s.client, fmt.Sprintf("/vendors/%d/modifier-groups", vendorID))
}

// ModifierOptions returns the options of one group
func (s *Service) ModifierOptions(ctx context.Context, groupID int64) ([]ModifierOption, error) {
	return api.Get[[]ModifierOption](ctx, s.client, fmt.Sprintf("/vendors/modifier-options/%d", groupID))
}

// CreateModifierGroup adds a group and returns its id
func (s *Service) CreateModifierGroup(ctx context.Context, vendorID int64, name string) (int64, error) {
	req := modifierGroupRequest{VendorID: vendorID, Name: name}
	if err := s.check(req); err != nil {
		return 0, err
	}
	resp, err := api.Post[created](ctx, s.client, "/vendors/modifier-groups", req)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// CreateModifierOption adds an option to a group and returns its id
func (s *Service) CreateModifierOption(ctx context.Context, groupID int64, name string, priceCents int64) (int64, error) {
	req := modifierOptionRequest{GroupID: groupID, Name: name, PriceCents: priceCents}
	if err := s.check(req); err != nil {
		return 0, err
	}
	resp, err := api.Post[created](ctx, s.client, "/vendors/modifier-options", req)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// ItemModifierGroups returns the groups offered on a menu item
func (s *Service) ItemModifierGroups(ctx context.Context, vendorID, itemID int64) ([]ModifierGroup, error) {
	return api.Get[[]ModifierGroup](ctx, s.client, fmt.Sprintf("/vendors/%d/menu/%d/modifier-groups", vendorID, itemID))
}

// AssignModifierGroup offers a group on a menu item
func (s *Service) AssignModifierGroup(ctx context.Context, vendorID, itemID, groupID int64) error {
	if groupID <= 0 {
		return fmt.Errorf("%w: group id must be positive", ErrInvalidInput)
	}
	return s.post(ctx, fmt.Sprintf("/vendors/%d/menu/%d/modifier-groups", vendorID, itemID), map[string]int64{
		"groupId": groupID,
	})
}

// UnassignModifierGroup stops offering a group on a menu item
func (s *Service) UnassignModifierGroup(ctx context.Context, vendorID, itemID, groupID int64) error {
	path := fmt.Sprintf("/vendors/%d/menu/%d/modifier-groups/%d", vendorID, itemID, groupID)
	return s.client.Do(ctx, http.MethodDelete, path, nil, nil)
}

// SetItemCategory files a menu item under a category. A zero categoryID
// removes it from any category.
func (s *Service) SetItemCategory(ctx context.Context, vendorID, itemID, categoryID int64) error {
	body := struct {
		CategoryID *int64 `json:"category_id"`
	}{}
	if categoryID > 0 {
		body.CategoryID = &categoryID
	}
	return s.post(ctx, fmt.Sprintf("/vendors/%d/menu/%d/category", vendorID, itemID), body)
}

// ReorderCategories stores a new category order. ids lists every category
// in display order; each gets its position as sort_index.
func (s *Service) ReorderCategories(ctx context.Context, vendorID int64, ids []int64) error {
	req := reorderRequest{Order: make([]CategoryPosition, len(ids))}
	seen := make(map[int64]bool, len(ids))
	for i, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: category %d is listed twice", ErrInvalidInput, id)
		}
		seen[id] = true
		req.Order[i] = CategoryPosition{ID: id, SortIndex: i}
	}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, fmt.Sprintf("/vendors/%d/categories/reorder", vendorID), req)
}

// DeleteCategory removes a category. Its items stay on the menu.
func (s *Service) DeleteCategory(ctx context.Context, vendorID, categoryID int64) error {
	path := fmt.Sprintf("/vendors/%d/categories/%d", vendorID, categoryID)
	return s.client.Do(ctx, http.MethodDelete, path, nil, nil)
}
