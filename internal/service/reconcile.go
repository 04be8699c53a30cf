package service

import (
	"log"

	"dispatch/internal/domain"
	"dispatch/internal/optimizer"
)

// StepErrorUnprocessed marks a synthetic step for an order the optimizer
// dropped from its response.
const StepErrorUnprocessed = "stop not returned by optimizer"

// Reconcile merges the optimizer's computed sequence with the internal stop
// descriptors and returns the final steps to persist.
//
// The optimizer is authoritative for ordering, timing and distance only.
// Customer name, phone, note, payment flag and item count always come from
// the descriptor, overwriting whatever the optimizer echoed back. Steps the
// optimizer returned for unknown order ids are kept unenriched; orders the
// optimizer dropped are appended as error steps so no delivery ever
// silently vanishes. The result always has one step per descriptor plus one
// per unknown optimizer id, and running it again on the same inputs yields
// the same output.
func Reconcile(stops []optimizer.Stop, computed []optimizer.RouteStep) []domain.Step {
	byID := make(map[string]optimizer.Stop, len(stops))
	for _, s := range stops {
		byID[s.ID] = s
	}

	matched := make(map[string]bool, len(computed))
	steps := make([]domain.Step, 0, len(stops))

	for _, rs := range computed {
		step := domain.Step{
			OrderID:       rs.OrderID,
			Type:          domain.StepTypeDelivery,
			Address:       rs.Address,
			ArrivalTime:   rs.ArrivalTime,
			DepartureTime: rs.DepartureTime,
			DistanceKm:    rs.DistanceKm,
		}
		if rs.Error != nil {
			step.Error = *rs.Error
		}

		desc, ok := byID[rs.OrderID]
		if !ok {
			// The optimizer introduced or mismatched an id. Keep the raw
			// step rather than dropping a potentially real delivery.
			log.Printf("reconcile: optimizer returned unknown order id %q", rs.OrderID)
			steps = append(steps, step)
			continue
		}

		matched[rs.OrderID] = true
		step.CustomerName = desc.CustomerName
		step.CustomerPhone = desc.CustomerPhone
		step.Note = desc.Note
		step.IsPaid = desc.IsPaid
		step.ItemsCount = desc.ItemsCount
		steps = append(steps, step)
	}

	// Restore anything the optimizer dropped, in descriptor order.
	for _, s := range stops {
		if matched[s.ID] {
			continue
		}
		steps = append(steps, domain.Step{
			OrderID:       s.ID,
			Type:          domain.StepTypeDelivery,
			Address:       s.Address,
			Error:         StepErrorUnprocessed,
			CustomerName:  s.CustomerName,
			CustomerPhone: s.CustomerPhone,
			Note:          s.Note,
			IsPaid:        s.IsPaid,
			ItemsCount:    s.ItemsCount,
		})
	}

	return steps
}
