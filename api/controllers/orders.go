package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/internal/orders"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/types"
)

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        enums.OrderStatus   `json:"status"`
	Subtotal      int64               `json:"subtotal"`
	ShippingFee   int64               `json:"shipping_fee"`
	TotalAmount   int64               `json:"total_amount"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	RecipientName string              `json:"recipient_name"`
	Phone         string              `json:"phone"`
	AddressLine   string              `json:"address_line"`
	Ward          string              `json:"ward"`
	District      string              `json:"district"`
	Province      string              `json:"province"`
	Notes         *string             `json:"notes,omitempty"`
	SubOrders     []subOrderResponse  `json:"sub_orders"`
	CreatedAt     time.Time           `json:"created_at"`
}

type subOrderResponse struct {
	ID               uuid.UUID            `json:"id"`
	SubOrderNumber   string               `json:"sub_order_number"`
	VendorID         uuid.UUID            `json:"vendor_id"`
	Status           enums.SubOrderStatus `json:"status"`
	Subtotal         int64                `json:"subtotal"`
	Items            []orderItemResponse  `json:"items,omitempty"`
	CookingStartedAt *time.Time           `json:"cooking_started_at,omitempty"`
	DeliveredAt      *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`

	// CookingSecondsLeft is present only while the countdown is armed.
	CookingSecondsLeft *int `json:"cooking_seconds_left,omitempty"`
}

type orderItemResponse struct {
	ID               uuid.UUID              `json:"id"`
	ProductID        uuid.UUID              `json:"product_id"`
	ProductName      string                 `json:"product_name"`
	UnitPrice        int64                  `json:"unit_price"`
	Quantity         int                    `json:"quantity"`
	LineTotal        int64                  `json:"line_total"`
	SelectedVariants types.SelectedVariants `json:"selected_variants,omitempty"`
}

func orderResponseFromModel(m *models.Order) orderResponse {
	resp := orderResponse{
		ID:            m.ID,
		OrderNumber:   m.OrderNumber,
		Status:        m.Status,
		Subtotal:      m.Subtotal,
		ShippingFee:   m.ShippingFee,
		TotalAmount:   m.TotalAmount,
		PaymentMethod: m.PaymentMethod,
		RecipientName: m.RecipientName,
		Phone:         m.Phone,
		AddressLine:   m.AddressLine,
		Ward:          m.Ward,
		District:      m.District,
		Province:      m.Province,
		Notes:         m.Notes,
		SubOrders:     make([]subOrderResponse, 0, len(m.SubOrders)),
		CreatedAt:     m.CreatedAt,
	}
	for i := range m.SubOrders {
		resp.SubOrders = append(resp.SubOrders, subOrderResponseFromModel(&m.SubOrders[i]))
	}
	return resp
}

func subOrderResponseFromModel(m *models.SubOrder) subOrderResponse {
	resp := subOrderResponse{
		ID:               m.ID,
		SubOrderNumber:   m.SubOrderNumber,
		VendorID:         m.VendorID,
		Status:           m.Status,
		Subtotal:         m.Subtotal,
		CookingStartedAt: m.CookingStartedAt,
		DeliveredAt:      m.DeliveredAt,
		CreatedAt:        m.CreatedAt,
	}
	for _, item := range m.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			UnitPrice:        item.UnitPrice,
			Quantity:         item.Quantity,
			LineTotal:        item.LineTotal,
			SelectedVariants: item.SelectedVariants,
		})
	}
	return resp
}

// OrderList returns the caller's orders, newest first.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListCustomerOrders(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orderResponse, 0, len(rows))
		for i := range rows {
			items = append(items, orderResponseFromModel(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// OrderDetail returns one order after confirming ownership.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseURLUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderResponseFromModel(order))
	}
}
