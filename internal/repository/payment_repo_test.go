package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"roomstay/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite" // registers the cgo-free "sqlite" driver
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Payment{}, &bookingModel{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func seedPayment(t *testing.T, repo *PaymentRepository, bookingID int64, status domain.PaymentStatus) *domain.Payment {
	t.Helper()
	p := &domain.Payment{
		BookingID:      bookingID,
		PayerID:        10,
		GatewayOrderID: fmt.Sprintf("order_%s_%d", t.Name(), bookingID),
		Receipt:        "rcpt_1",
		Amount:         1500000,
		Currency:       "INR",
		Status:         domain.PaymentCreated,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if status != domain.PaymentCreated {
		if err := repo.db.Model(&domain.Payment{}).Where("id = ?", p.ID).Update("status", status).Error; err != nil {
			t.Fatalf("set status: %v", err)
		}
		p.Status = status
	}
	return p
}

func TestCreateRejectsSecondOpenPayment(t *testing.T) {
	repo := NewPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	seedPayment(t, repo, 42, domain.PaymentCreated)

	err := repo.Create(ctx, &domain.Payment{
		BookingID:      42,
		PayerID:        10,
		GatewayOrderID: "order_second",
		Amount:         1500000,
		Currency:       "INR",
		Status:         domain.PaymentCreated,
	})
	if !errors.Is(err, ErrOutstandingPayment) {
		t.Fatalf("err = %v, want ErrOutstandingPayment", err)
	}
}

func TestCreateAllowedAfterFailure(t *testing.T) {
	repo := NewPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	seedPayment(t, repo, 42, domain.PaymentFailed)

	err := repo.Create(ctx, &domain.Payment{
		BookingID:      42,
		PayerID:        10,
		GatewayOrderID: "order_retry",
		Amount:         1500000,
		Currency:       "INR",
		Status:         domain.PaymentCreated,
	})
	if err != nil {
		t.Fatalf("Create after failed payment: %v", err)
	}

	latest, err := repo.GetByBookingID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByBookingID: %v", err)
	}
	if latest.GatewayOrderID != "order_retry" {
		t.Errorf("latest order = %s, want the retry order", latest.GatewayOrderID)
	}
}

func TestMarkCompletedIfIdempotent(t *testing.T) {
	repo := NewPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	p := seedPayment(t, repo, 42, domain.PaymentCreated)
	capturedAt := time.Now().UTC()

	changed, err := repo.MarkCompletedIf(ctx, p.GatewayOrderID, "pay_1", "upi", `{"event":"payment.captured"}`, capturedAt)
	if err != nil {
		t.Fatalf("MarkCompletedIf: %v", err)
	}
	if !changed {
		t.Fatal("first capture did not change the row")
	}

	changed, err = repo.MarkCompletedIf(ctx, p.GatewayOrderID, "pay_1", "upi", `{"event":"payment.captured"}`, capturedAt)
	if err != nil {
		t.Fatalf("replayed MarkCompletedIf: %v", err)
	}
	if changed {
		t.Error("replayed capture reported a change")
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.PaymentCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.GatewayPaymentID != "pay_1" {
		t.Errorf("gateway payment id = %s", got.GatewayPaymentID)
	}
}

func TestMarkCompletedIfUnknownOrder(t *testing.T) {
	repo := NewPaymentRepository(setupTestDB(t))

	_, err := repo.MarkCompletedIf(context.Background(), "order_unknown", "pay_x", "upi", "{}", time.Now())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestMarkFailedIfDoesNotRegressCapture(t *testing.T) {
	repo := NewPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	p := seedPayment(t, repo, 42, domain.PaymentCreated)
	if _, err := repo.MarkCompletedIf(ctx, p.GatewayOrderID, "pay_1", "card", "{}", time.Now()); err != nil {
		t.Fatalf("MarkCompletedIf: %v", err)
	}

	changed, err := repo.MarkFailedIf(ctx, p.GatewayOrderID, "BAD_GATEWAY", "late failure event")
	if err != nil {
		t.Fatalf("MarkFailedIf: %v", err)
	}
	if changed {
		t.Error("late failure changed a completed payment")
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.PaymentCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestMarkRefundedIfOnlyFromCompleted(t *testing.T) {
	repo := NewPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	p := seedPayment(t, repo, 42, domain.PaymentCreated)

	changed, err := repo.MarkRefundedIf(ctx, p.ID, "rfnd_1", 1500000, time.Now())
	if err != nil {
		t.Fatalf("MarkRefundedIf: %v", err)
	}
	if changed {
		t.Fatal("refund applied to a non-completed payment")
	}

	if _, err := repo.MarkCompletedIf(ctx, p.GatewayOrderID, "pay_1", "upi", "{}", time.Now()); err != nil {
		t.Fatalf("MarkCompletedIf: %v", err)
	}
	changed, err = repo.MarkRefundedIf(ctx, p.ID, "rfnd_1", 1500000, time.Now())
	if err != nil {
		t.Fatalf("MarkRefundedIf: %v", err)
	}
	if !changed {
		t.Fatal("refund did not apply to a completed payment")
	}

	// Second refund is a no-op.
	changed, err = repo.MarkRefundedIf(ctx, p.ID, "rfnd_2", 1500000, time.Now())
	if err != nil {
		t.Fatalf("second MarkRefundedIf: %v", err)
	}
	if changed {
		t.Error("second refund changed the row")
	}
}

func TestBookingStatusCASAndPaymentSync(t *testing.T) {
	db := setupTestDB(t)
	bookings := NewBookingRepository(db)
	ctx := context.Background()

	b := &domain.Booking{
		RoomID:   3,
		SeekerID: 10,
		OwnerID:  20,
		CheckIn:  time.Now().AddDate(0, 0, 7),
		CheckOut: time.Now().AddDate(0, 1, 7),
		Status:   domain.BookingPending,
		Payment: domain.PaymentView{
			Amount: 1500000,
			Status: domain.PaymentViewPending,
		},
		RequestDate: time.Now(),
	}
	if err := bookings.Create(ctx, b); err != nil {
		t.Fatalf("Create booking: %v", err)
	}

	paidAt := time.Now().UTC()
	if err := bookings.SyncPaymentCaptured(ctx, b.ID, "pay_1", paidAt); err != nil {
		t.Fatalf("SyncPaymentCaptured: %v", err)
	}

	got, err := bookings.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.BookingPaid {
		t.Errorf("booking status = %s, want paid", got.Status)
	}
	if got.Payment.Status != domain.PaymentViewCompleted {
		t.Errorf("payment view = %s, want completed", got.Payment.Status)
	}

	// CAS from the observed status succeeds once.
	changed, err := bookings.UpdateStatusIf(ctx, b.ID, []domain.BookingStatus{domain.BookingPaid}, domain.BookingConfirmed, "")
	if err != nil {
		t.Fatalf("UpdateStatusIf: %v", err)
	}
	if !changed {
		t.Fatal("transition from paid did not apply")
	}

	// A stale CAS against the old status is a no-op.
	changed, err = bookings.UpdateStatusIf(ctx, b.ID, []domain.BookingStatus{domain.BookingPaid}, domain.BookingCancelled, "")
	if err != nil {
		t.Fatalf("stale UpdateStatusIf: %v", err)
	}
	if changed {
		t.Error("stale transition applied")
	}
}

func TestSyncPaymentCapturedKeepsRefundedView(t *testing.T) {
	db := setupTestDB(t)
	bookings := NewBookingRepository(db)
	ctx := context.Background()

	b := &domain.Booking{
		RoomID:   3,
		SeekerID: 10,
		OwnerID:  20,
		CheckIn:  time.Now().AddDate(0, 0, 7),
		CheckOut: time.Now().AddDate(0, 1, 7),
		Status:   domain.BookingPending,
		Payment: domain.PaymentView{
			Amount: 1500000,
			Status: domain.PaymentViewPending,
		},
		RequestDate: time.Now(),
	}
	if err := bookings.Create(ctx, b); err != nil {
		t.Fatalf("Create booking: %v", err)
	}

	paidAt := time.Now().UTC()
	if err := bookings.SyncPaymentCaptured(ctx, b.ID, "pay_1", paidAt); err != nil {
		t.Fatalf("SyncPaymentCaptured: %v", err)
	}
	if err := bookings.SyncPaymentRefunded(ctx, b.ID, time.Now().UTC(), "changed plans"); err != nil {
		t.Fatalf("SyncPaymentRefunded: %v", err)
	}

	// A redelivered capture mirror must not resurrect the old view.
	if err := bookings.SyncPaymentCaptured(ctx, b.ID, "pay_1", paidAt); err != nil {
		t.Fatalf("replayed SyncPaymentCaptured: %v", err)
	}

	got, err := bookings.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Payment.Status != domain.PaymentViewRefunded {
		t.Errorf("payment view = %s, want refunded", got.Payment.Status)
	}
	if got.Status != domain.BookingCancelled {
		t.Errorf("booking status = %s, want cancelled", got.Status)
	}
}
