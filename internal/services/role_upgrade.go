package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingCreated is emitted when a product listing is about to be
// published. Handlers run synchronously before the listing is persisted;
// a handler error aborts the listing.
type ListingCreated struct {
	OwnerID  primitive.ObjectID
	CropName string
}

// IListingCreatedHandler reacts to new listings.
type IListingCreatedHandler interface {
	HandleListingCreated(ctx context.Context, event ListingCreated) error
}

// roleUpgradeHandler promotes the listing owner to farmer.
type roleUpgradeHandler struct {
	userService IUserService
}

// NewRoleUpgradeHandler creates the handler that upgrades a customer to
// farmer on their first listing.
func NewRoleUpgradeHandler(userService IUserService) IListingCreatedHandler {
	return &roleUpgradeHandler{userService: userService}
}

func (h *roleUpgradeHandler) HandleListingCreated(ctx context.Context, event ListingCreated) error {
	return h.userService.EnsureFarmerRole(ctx, event.OwnerID)
}
