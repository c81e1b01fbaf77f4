package orders

import (
	"fmt"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
)

var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusNew:        {enums.OrderStatusPending, enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:  nil,
	enums.OrderStatusCancelled:  nil,
}

func validateTransition(from, to enums.OrderStatus) error {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return errors.New(errors.CodeConflict, fmt.Sprintf("cannot move order from %s to %s", from, to))
}
