package auth

import (
	"testing"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
)

func TestCapabilityTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role enums.Role
		cap  Capability
		want bool
	}{
		{enums.RoleAdmin, CapOrderOnBehalf, true},
		{enums.RoleAdmin, CapDeleteOrder, true},
		{enums.RoleGroup, CapOrderOnBehalf, true},
		{enums.RoleGroup, CapDeleteOrder, false},
		{enums.RolePharmacy, CapPlaceOrder, true},
		{enums.RolePharmacy, CapAcceptPurchaseOrder, true},
		{enums.RoleHospital, CapPlaceOrder, true},
		{enums.RoleHospital, CapOrderOnBehalf, false},
	}
	for _, tc := range cases {
		if got := Can(tc.role, tc.cap); got != tc.want {
			t.Fatalf("Can(%s, %s) = %v, want %v", tc.role, tc.cap, got, tc.want)
		}
	}
}

func TestUnknownRoleHasNoCapabilities(t *testing.T) {
	t.Parallel()

	if Can(enums.Role("ghost"), CapPlaceOrder) {
		t.Fatal("unknown role should have no capabilities")
	}
}
