package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
)

type stubAddressRepo struct {
	rows map[uuid.UUID]*models.Address
}

func newStubAddressRepo() *stubAddressRepo {
	return &stubAddressRepo{rows: make(map[uuid.UUID]*models.Address)}
}

func (s *stubAddressRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAddressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	for _, row := range s.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubAddressRepo) Find(ctx context.Context, addressID uuid.UUID) (*models.Address, error) {
	row, ok := s.rows[addressID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubAddressRepo) Create(ctx context.Context, address *models.Address) error {
	s.rows[address.ID] = address
	return nil
}

func (s *stubAddressRepo) Update(ctx context.Context, address *models.Address) error {
	s.rows[address.ID] = address
	return nil
}

func (s *stubAddressRepo) Delete(ctx context.Context, addressID uuid.UUID) error {
	delete(s.rows, addressID)
	return nil
}

func (s *stubAddressRepo) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	for _, row := range s.rows {
		if row.UserID == userID {
			row.IsDefault = false
		}
	}
	return nil
}

func (s *stubAddressRepo) SetDefault(ctx context.Context, addressID uuid.UUID) error {
	if row, ok := s.rows[addressID]; ok {
		row.IsDefault = true
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func validInput() Input {
	return Input{
		RecipientName: "Ngô Thị Hoa",
		Phone:         "0912345678",
		AddressLine:   "5 Trần Phú",
		Ward:          "Phường 2",
		District:      "Quận Hải Châu",
		Province:      "Đà Nẵng",
	}
}

func newAddressService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	repo := newStubAddressRepo()
	svc := newAddressService(t, repo)
	userID := uuid.New()

	first, err := svc.Create(context.Background(), userID, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("first address must become default")
	}

	second, err := svc.Create(context.Background(), userID, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.IsDefault {
		t.Fatal("second address must not steal the default")
	}
}

func TestSetDefaultUnsetsOthers(t *testing.T) {
	repo := newStubAddressRepo()
	svc := newAddressService(t, repo)
	userID := uuid.New()

	first, _ := svc.Create(context.Background(), userID, validInput())
	second, _ := svc.Create(context.Background(), userID, validInput())

	if err := svc.SetDefault(context.Background(), userID, second.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.rows[first.ID].IsDefault {
		t.Fatal("previous default must be unset")
	}
	if !repo.rows[second.ID].IsDefault {
		t.Fatal("new default must be set")
	}
}

func TestDeleteDefaultLeavesNoDefault(t *testing.T) {
	repo := newStubAddressRepo()
	svc := newAddressService(t, repo)
	userID := uuid.New()

	first, _ := svc.Create(context.Background(), userID, validInput())
	svc.Create(context.Background(), userID, validInput())

	if err := svc.Delete(context.Background(), userID, first.ID); err != nil {
		t.Fatalf("deleting the default must be allowed: %v", err)
	}
	for _, row := range repo.rows {
		if row.IsDefault {
			t.Fatal("no address should be default after deleting the default")
		}
	}
}

func TestForeignAddressForbidden(t *testing.T) {
	repo := newStubAddressRepo()
	svc := newAddressService(t, repo)
	owner := uuid.New()

	created, _ := svc.Create(context.Background(), owner, validInput())

	err := svc.Delete(context.Background(), uuid.New(), created.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, ok := repo.rows[created.ID]; !ok {
		t.Fatal("foreign delete must not remove the address")
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc := newAddressService(t, newStubAddressRepo())

	input := validInput()
	input.Phone = ""
	input.Province = "  "
	_, err := svc.Create(context.Background(), uuid.New(), input)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", appErr.Details())
	}
	missing, _ := details["missing_fields"].([]string)
	if len(missing) != 2 {
		t.Fatalf("missing fields = %v, want phone and province", missing)
	}
}
