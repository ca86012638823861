package orders

import (
	"fmt"

	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
)

type transition struct {
	from  enums.OrderStatus
	to    enums.OrderStatus
	actor enums.Actor
}

// The full set of legal order status moves. Anything outside this table is a
// state conflict, including staff writes that used to be unconstrained.
var allowedTransitions = map[transition]struct{}{
	{enums.OrderStatusRequested, enums.OrderStatusQuoted, enums.ActorStaff}:      {},
	{enums.OrderStatusPending, enums.OrderStatusQuoted, enums.ActorStaff}:        {},
	{enums.OrderStatusQuoted, enums.OrderStatusQuoted, enums.ActorStaff}:         {},
	{enums.OrderStatusQuoted, enums.OrderStatusPending, enums.ActorCustomer}:     {},
	{enums.OrderStatusPending, enums.OrderStatusPaid, enums.ActorGateway}:        {},
	{enums.OrderStatusPaid, enums.OrderStatusShipped, enums.ActorStaff}:          {},
	{enums.OrderStatusShipped, enums.OrderStatusDelivered, enums.ActorStaff}:     {},
	{enums.OrderStatusRequested, enums.OrderStatusRejected, enums.ActorCustomer}: {},
	{enums.OrderStatusPending, enums.OrderStatusRejected, enums.ActorCustomer}:   {},
}

// Transition validates a single (from, to, actor) move.
func Transition(from, to enums.OrderStatus, actor enums.Actor) error {
	if !from.IsValid() || !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if !actor.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid actor")
	}
	if _, ok := allowedTransitions[transition{from: from, to: to, actor: actor}]; !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("%s cannot move order from %s to %s", actor, from, to))
	}
	return nil
}
