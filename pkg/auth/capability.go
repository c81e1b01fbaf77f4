package auth

import "github.com/rxsupplyhq/rxsupply-backend/pkg/enums"

// Capability names an action a role may perform. The lookup table below is
// the single source of role dispatch; handlers never compare role strings.
type Capability string

const (
	CapPlaceOrder          Capability = "place_order"
	CapOrderOnBehalf       Capability = "order_on_behalf"
	CapManageOrders        Capability = "manage_orders"
	CapDeleteOrder         Capability = "delete_order"
	CapRecordManualPayment Capability = "record_manual_payment"
	CapSendPaymentLink     Capability = "send_payment_link"
	CapAcceptPurchaseOrder Capability = "accept_purchase_order"
	CapManageProducts      Capability = "manage_products"
	CapViewAllOrders       Capability = "view_all_orders"
)

var capabilitiesByRole = map[enums.Role]map[Capability]struct{}{
	enums.RoleAdmin: capSet(
		CapPlaceOrder,
		CapOrderOnBehalf,
		CapManageOrders,
		CapDeleteOrder,
		CapRecordManualPayment,
		CapSendPaymentLink,
		CapManageProducts,
		CapViewAllOrders,
	),
	enums.RolePharmacy: capSet(
		CapPlaceOrder,
		CapAcceptPurchaseOrder,
	),
	enums.RoleGroup: capSet(
		CapPlaceOrder,
		CapOrderOnBehalf,
	),
	enums.RoleHospital: capSet(
		CapPlaceOrder,
	),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Can reports whether the role grants the capability.
func Can(role enums.Role, cap Capability) bool {
	caps, ok := capabilitiesByRole[role]
	if !ok {
		return false
	}
	_, ok = caps[cap]
	return ok
}
