package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"appointly/internal/domain"
)

var (
	admin    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	alice    = domain.Actor{ID: "alice", Role: domain.RoleCustomer}
	bob      = domain.Actor{ID: "bob", Role: domain.RoleCustomer}
	nobody   = domain.Anonymous
	aliceRes = Resource{OwnerID: "alice"}
)

func TestAuthorize_Table(t *testing.T) {
	cases := []struct {
		name    string
		actor   domain.Actor
		action  Action
		res     Resource
		allowed bool
		unauthn bool
	}{
		{"anyone lists slots", nobody, SlotList, Resource{}, true, false},
		{"anyone lists blocked dates", nobody, BlockedDateList, Resource{}, true, false},
		{"admin creates slot", admin, SlotCreate, Resource{}, true, false},
		{"customer cannot create slot", alice, SlotCreate, Resource{}, false, false},
		{"anonymous cannot delete slot", nobody, SlotDelete, Resource{}, false, true},
		{"customer cannot block date", alice, BlockedDateCreate, Resource{}, false, false},
		{"admin unblocks date", admin, BlockedDateDelete, Resource{}, true, false},
		{"customer books", alice, BookingCreate, Resource{}, true, false},
		{"anonymous cannot book", nobody, BookingCreate, Resource{}, false, true},
		{"customer cannot confirm", alice, BookingConfirm, aliceRes, false, false},
		{"admin confirms", admin, BookingConfirm, aliceRes, true, false},
		{"owner cancels", alice, BookingCancel, aliceRes, true, false},
		{"other customer cannot cancel", bob, BookingCancel, aliceRes, false, false},
		{"admin cancels any", admin, BookingCancel, aliceRes, true, false},
		{"owner reads booking", alice, BookingGet, aliceRes, true, false},
		{"other reads booking", bob, BookingGet, aliceRes, false, false},
		{"customer lists own", alice, BookingList, Resource{}, true, false},
		{"customer lists own explicit", alice, BookingList, aliceRes, true, false},
		{"customer lists other", bob, BookingList, aliceRes, false, false},
		{"admin lists any", admin, BookingList, aliceRes, true, false},
		{"anonymous list bookings", nobody, BookingList, Resource{}, false, true},
		{"customer cannot list users", alice, UserList, Resource{}, false, false},
		{"unknown action", admin, Action("x"), Resource{}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.actor, tc.action, tc.res)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.unauthn, d.Unauthenticated)
		})
	}
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Authorize(admin, SlotCreate, Resource{}).Err())
	assert.ErrorIs(t, Authorize(alice, SlotCreate, Resource{}).Err(), domain.ErrUnauthorized)
	assert.NotErrorIs(t, Authorize(alice, SlotCreate, Resource{}).Err(), domain.ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(nobody, BookingCreate, Resource{}).Err(), domain.ErrUnauthenticated)
}
