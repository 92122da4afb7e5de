package usage

import (
	"context"
	"errors"
	"testing"
)

func TestCanConsumeWithinLimit(t *testing.T) {
	svc := NewService()

	ok, u, err := svc.CanConsume(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("CanConsume: %v", err)
	}
	if !ok {
		t.Fatal("expected fresh user to be allowed")
	}
	if u.Plan != "Free" || u.Limit != 20 {
		t.Fatalf("unexpected defaults: %+v", u)
	}
}

func TestConsumeUpToLimitThenBlocked(t *testing.T) {
	svc := NewService()

	if _, err := svc.Consume(context.Background(), "user-1", 20); err != nil {
		t.Fatalf("consume to limit: %v", err)
	}

	ok, u, err := svc.CanConsume(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("CanConsume: %v", err)
	}
	if ok {
		t.Fatalf("expected limit reached at used=%d", u.Used)
	}

	if _, err := svc.Consume(context.Background(), "user-1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestResetClearsConsumption(t *testing.T) {
	svc := NewService()
	if _, err := svc.Consume(context.Background(), "user-1", 5); err != nil {
		t.Fatalf("consume: %v", err)
	}

	u, err := svc.Reset(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used 0 after reset, got %d", u.Used)
	}
}
