package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/api/validators"
	"github.com/tuanvle/dacsan-backend/internal/cart"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/pricing"
	"github.com/tuanvle/dacsan-backend/pkg/types"
)

type cartAddRequest struct {
	ProductID  string              `json:"product_id" validate:"required"`
	Quantity   int                 `json:"quantity" validate:"required,min=1"`
	Selections []pricing.Selection `json:"selections" validate:"dive"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartViewResponse struct {
	Groups      []cartGroupResponse `json:"vendor_groups"`
	TotalAmount int64               `json:"total_amount"`
	TotalItems  int                 `json:"total_items"`
}

type cartGroupResponse struct {
	VendorID   uuid.UUID          `json:"vendor_id"`
	VendorName string             `json:"vendor_name"`
	Items      []cartItemResponse `json:"items"`
	Subtotal   int64              `json:"subtotal"`
	ItemCount  int                `json:"item_count"`
}

type cartItemResponse struct {
	ID               uuid.UUID              `json:"id"`
	ProductID        uuid.UUID              `json:"product_id"`
	ProductName      string                 `json:"product_name"`
	UnitPrice        int64                  `json:"unit_price"`
	Quantity         int                    `json:"quantity"`
	LineTotal        int64                  `json:"line_total"`
	SelectedVariants types.SelectedVariants `json:"selected_variants,omitempty"`
}

func cartViewResponseFromView(view *cart.View) cartViewResponse {
	resp := cartViewResponse{
		Groups:      make([]cartGroupResponse, 0, len(view.Groups)),
		TotalAmount: view.TotalAmount,
		TotalItems:  view.TotalItems,
	}
	for _, group := range view.Groups {
		g := cartGroupResponse{
			VendorID:   group.VendorID,
			VendorName: group.VendorName,
			Items:      make([]cartItemResponse, 0, len(group.Items)),
			Subtotal:   group.Subtotal,
			ItemCount:  group.ItemCount,
		}
		for _, item := range group.Items {
			g.Items = append(g.Items, cartItemResponseFromModel(item))
		}
		resp.Groups = append(resp.Groups, g)
	}
	return resp
}

func cartItemResponseFromModel(item models.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:               item.ID,
		ProductID:        item.ProductID,
		ProductName:      item.ProductName,
		UnitPrice:        item.UnitPrice,
		Quantity:         item.Quantity,
		LineTotal:        item.LineTotal,
		SelectedVariants: item.SelectedVariants,
	}
}

// CartFetch returns the caller's cart grouped by vendor.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartViewResponseFromView(view))
	}
}

// CartAddItem prices and stores one line snapshot.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		view, err := svc.AddItem(r.Context(), userID, cart.AddItemInput{
			ProductID:  productID,
			Quantity:   payload.Quantity,
			Selections: payload.Selections,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cartViewResponseFromView(view))
	}
}

// CartUpdateItem changes a line quantity; zero or less removes the line.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseURLUUID(r, "itemId", "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateItemQuantity(r.Context(), userID, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartViewResponseFromView(view))
	}
}

// CartRemoveItem drops one line from the cart.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseURLUUID(r, "itemId", "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveItem(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartViewResponseFromView(view))
	}
}

// CartClear empties the cart.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
