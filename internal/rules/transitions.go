// Package rules holds the pure domain predicates: entity validation,
// status transitions, uniqueness and conflict checks, and snapshot shape.
// Nothing here touches the store, so every rule is directly testable.
package rules

import "github.com/zulandar/waybill/internal/models"

// OrderTransitions maps each car-order status to its valid next statuses.
var OrderTransitions = map[string][]string{
	models.OrderPending:   {models.OrderAssigned, models.OrderDelivered},
	models.OrderAssigned:  {models.OrderInTransit, models.OrderDelivered, models.OrderPending},
	models.OrderInTransit: {models.OrderDelivered, models.OrderAssigned},
	models.OrderDelivered: {},
}

// TrainTransitions maps each train status to its valid next statuses.
var TrainTransitions = map[string][]string{
	models.TrainPlanned:    {models.TrainInProgress, models.TrainCancelled},
	models.TrainInProgress: {models.TrainCompleted, models.TrainCancelled},
	models.TrainCompleted:  {},
	models.TrainCancelled:  {},
}

// CanTransitionOrder reports whether a car order may move from one status
// to another.
func CanTransitionOrder(from, to string) bool {
	return canTransition(OrderTransitions, from, to)
}

// CanTransitionTrain reports whether a train may move from one status to
// another.
func CanTransitionTrain(from, to string) bool {
	return canTransition(TrainTransitions, from, to)
}

func canTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidOrderStatus reports whether s is a known car-order status.
func ValidOrderStatus(s string) bool {
	_, ok := OrderTransitions[s]
	return ok
}

// ValidTrainStatus reports whether s is a known train status.
func ValidTrainStatus(s string) bool {
	_, ok := TrainTransitions[s]
	return ok
}
