package orders

import (
	"testing"

	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
)

func TestTransitionAllowsWhitelistedMoves(t *testing.T) {
	cases := []struct {
		from  enums.OrderStatus
		to    enums.OrderStatus
		actor enums.Actor
	}{
		{enums.OrderStatusRequested, enums.OrderStatusQuoted, enums.ActorStaff},
		{enums.OrderStatusPending, enums.OrderStatusQuoted, enums.ActorStaff},
		{enums.OrderStatusQuoted, enums.OrderStatusQuoted, enums.ActorStaff},
		{enums.OrderStatusQuoted, enums.OrderStatusPending, enums.ActorCustomer},
		{enums.OrderStatusPending, enums.OrderStatusPaid, enums.ActorGateway},
		{enums.OrderStatusPaid, enums.OrderStatusShipped, enums.ActorStaff},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered, enums.ActorStaff},
		{enums.OrderStatusRequested, enums.OrderStatusRejected, enums.ActorCustomer},
		{enums.OrderStatusPending, enums.OrderStatusRejected, enums.ActorCustomer},
	}
	for _, tc := range cases {
		if err := Transition(tc.from, tc.to, tc.actor); err != nil {
			t.Fatalf("expected %s -> %s by %s to be allowed, got %v", tc.from, tc.to, tc.actor, err)
		}
	}
}

func TestTransitionRejectsWrongActor(t *testing.T) {
	err := Transition(enums.OrderStatusPending, enums.OrderStatusPaid, enums.ActorCustomer)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestTransitionRejectsUnknownMove(t *testing.T) {
	err := Transition(enums.OrderStatusDelivered, enums.OrderStatusPending, enums.ActorStaff)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestTransitionRejectsInvalidStatus(t *testing.T) {
	err := Transition(enums.OrderStatus("archived"), enums.OrderStatusPaid, enums.ActorStaff)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}
