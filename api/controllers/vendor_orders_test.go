package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/middleware"
	"github.com/tuanvle/dacsan-backend/internal/orders"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

type stubOrdersService struct {
	partition *orders.Partition
	change    *orders.StatusChange
	err       error

	gotInput orders.UpdateStatusInput
}

func (s *stubOrdersService) ListCustomerOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	return nil, nil
}

func (s *stubOrdersService) VendorDashboard(ctx context.Context, vendorID uuid.UUID) (*orders.Partition, error) {
	return s.partition, s.err
}

func (s *stubOrdersService) UpdateSubOrderStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.StatusChange, error) {
	s.gotInput = input
	return s.change, s.err
}

type stubCountdown struct {
	armed    []uuid.UUID
	disarmed []uuid.UUID
	ticks    map[uuid.UUID]int
}

func (s *stubCountdown) Arm(id uuid.UUID) {
	s.armed = append(s.armed, id)
}

func (s *stubCountdown) Disarm(id uuid.UUID) {
	s.disarmed = append(s.disarmed, id)
}

func (s *stubCountdown) Remaining(id uuid.UUID) (int, bool) {
	left, ok := s.ticks[id]
	return left, ok
}

func vendorRequest(method, target, body string, vendorID, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleVendor))
	ctx = middleware.WithVendorID(ctx, vendorID.String())
	return req.WithContext(ctx)
}

func TestVendorUpdateSubOrderStatusArmsCountdown(t *testing.T) {
	vendorID := uuid.New()
	userID := uuid.New()
	subOrderID := uuid.New()

	svc := &stubOrdersService{
		change: &orders.StatusChange{
			SubOrder: models.SubOrder{
				ID:       subOrderID,
				VendorID: vendorID,
				Status:   enums.SubOrderStatusCooking,
			},
			OrderStatus:  enums.OrderStatusPreparing,
			Changed:      true,
			ArmCountdown: true,
		},
	}
	countdown := &stubCountdown{ticks: map[uuid.UUID]int{subOrderID: 30}}
	handler := VendorUpdateSubOrderStatus(svc, countdown, nil)

	req := vendorRequest(http.MethodPatch, "/api/v1/vendor/orders/"+subOrderID.String()+"/status", `{"status":"COOKING"}`, vendorID, userID)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("subOrderId", subOrderID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(countdown.armed) != 1 || countdown.armed[0] != subOrderID {
		t.Fatalf("expected countdown armed for %s, got %v", subOrderID, countdown.armed)
	}
	if svc.gotInput.VendorID != vendorID {
		t.Fatalf("vendor id not forwarded to service")
	}
	if svc.gotInput.ActorUserID != userID {
		t.Fatalf("actor user id not forwarded to service")
	}
	if svc.gotInput.Automatic {
		t.Fatalf("vendor transitions must not be marked automatic")
	}

	var envelope struct {
		Data statusUpdateResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SubOrder.Status != enums.SubOrderStatusCooking {
		t.Fatalf("unexpected status %s", envelope.Data.SubOrder.Status)
	}
	if envelope.Data.OrderStatus != enums.OrderStatusPreparing {
		t.Fatalf("unexpected order status %s", envelope.Data.OrderStatus)
	}
	if envelope.Data.SubOrder.CookingSecondsLeft == nil || *envelope.Data.SubOrder.CookingSecondsLeft != 30 {
		t.Fatalf("expected countdown in response, got %v", envelope.Data.SubOrder.CookingSecondsLeft)
	}
}

func TestVendorUpdateSubOrderStatusDisarmsCountdown(t *testing.T) {
	vendorID := uuid.New()
	subOrderID := uuid.New()

	svc := &stubOrdersService{
		change: &orders.StatusChange{
			SubOrder: models.SubOrder{
				ID:       subOrderID,
				VendorID: vendorID,
				Status:   enums.SubOrderStatusCancelled,
			},
			OrderStatus:     enums.OrderStatusCancelled,
			Changed:         true,
			DisarmCountdown: true,
		},
	}
	countdown := &stubCountdown{ticks: map[uuid.UUID]int{}}
	handler := VendorUpdateSubOrderStatus(svc, countdown, nil)

	req := vendorRequest(http.MethodPatch, "/api/v1/vendor/orders/"+subOrderID.String()+"/status", `{"status":"CANCELLED"}`, vendorID, uuid.New())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("subOrderId", subOrderID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(countdown.disarmed) != 1 || countdown.disarmed[0] != subOrderID {
		t.Fatalf("expected countdown disarmed for %s, got %v", subOrderID, countdown.disarmed)
	}
	if len(countdown.armed) != 0 {
		t.Fatalf("cancel must not arm a countdown")
	}
}

func TestVendorUpdateSubOrderStatusRejectsInvalidStatus(t *testing.T) {
	vendorID := uuid.New()
	subOrderID := uuid.New()
	handler := VendorUpdateSubOrderStatus(&stubOrdersService{}, &stubCountdown{}, nil)

	req := vendorRequest(http.MethodPatch, "/api/v1/vendor/orders/"+subOrderID.String()+"/status", `{"status":"TELEPORTED"}`, vendorID, uuid.New())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("subOrderId", subOrderID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestVendorDashboardAttachesCountdown(t *testing.T) {
	vendorID := uuid.New()
	cookingID := uuid.New()
	pendingID := uuid.New()

	svc := &stubOrdersService{
		partition: &orders.Partition{
			Pending: []models.SubOrder{{ID: pendingID, VendorID: vendorID, Status: enums.SubOrderStatusPending}},
			Cooking: []models.SubOrder{{ID: cookingID, VendorID: vendorID, Status: enums.SubOrderStatusCooking}},
		},
	}
	countdown := &stubCountdown{ticks: map[uuid.UUID]int{cookingID: 12}}
	handler := VendorDashboard(svc, countdown, nil)

	req := vendorRequest(http.MethodGet, "/api/v1/vendor/orders", "", vendorID, uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data vendorDashboardResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Cooking) != 1 {
		t.Fatalf("expected one cooking row, got %d", len(envelope.Data.Cooking))
	}
	cooking := envelope.Data.Cooking[0]
	if cooking.CookingSecondsLeft == nil || *cooking.CookingSecondsLeft != 12 {
		t.Fatalf("expected countdown 12 on cooking row, got %v", cooking.CookingSecondsLeft)
	}
	if len(envelope.Data.Pending) != 1 {
		t.Fatalf("expected one pending row, got %d", len(envelope.Data.Pending))
	}
	if envelope.Data.Pending[0].CookingSecondsLeft != nil {
		t.Fatalf("pending row should not carry a countdown")
	}
	if envelope.Data.History == nil || envelope.Data.Delivering == nil {
		t.Fatalf("empty buckets should be empty arrays, not null")
	}
}

func TestVendorDashboardMissingVendorContext(t *testing.T) {
	handler := VendorDashboard(&stubOrdersService{}, &stubCountdown{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/orders", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
