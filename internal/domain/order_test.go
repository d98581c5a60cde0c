package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"placed to accepted", OrderStatusPlaced, OrderStatusAccepted, true},
		{"placed to cancelled", OrderStatusPlaced, OrderStatusCancelled, true},
		{"placed to preparing skips accepted", OrderStatusPlaced, OrderStatusPreparing, false},
		{"accepted to preparing", OrderStatusAccepted, OrderStatusPreparing, true},
		{"accepted to cancelled", OrderStatusAccepted, OrderStatusCancelled, true},
		{"preparing to ready", OrderStatusPreparing, OrderStatusReady, true},
		{"preparing to cancelled too late", OrderStatusPreparing, OrderStatusCancelled, false},
		{"ready to out_for_delivery", OrderStatusReady, OrderStatusOutForDelivery, true},
		{"ready straight to delivered", OrderStatusReady, OrderStatusDelivered, true},
		{"out_for_delivery to delivered", OrderStatusOutForDelivery, OrderStatusDelivered, true},
		{"delivered is terminal", OrderStatusDelivered, OrderStatusAccepted, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusPlaced, false},
		{"no backwards moves", OrderStatusReady, OrderStatusPreparing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestAuthorizeTransitionRoles(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		role    Role
		wantErr string // expected error code, empty for allowed
	}{
		{"waiter accepts", OrderStatusPlaced, OrderStatusAccepted, RoleWaiter, ""},
		{"driver cannot accept", OrderStatusPlaced, OrderStatusAccepted, RoleDriver, EFORBIDDEN},
		{"customer cannot accept", OrderStatusPlaced, OrderStatusAccepted, RoleCustomer, EFORBIDDEN},
		{"customer cancels placed", OrderStatusPlaced, OrderStatusCancelled, RoleCustomer, ""},
		{"customer cannot cancel accepted", OrderStatusAccepted, OrderStatusCancelled, RoleCustomer, EFORBIDDEN},
		{"waiter cancels accepted", OrderStatusAccepted, OrderStatusCancelled, RoleWaiter, ""},
		{"waiter drives kitchen", OrderStatusAccepted, OrderStatusPreparing, RoleWaiter, ""},
		{"driver takes out", OrderStatusReady, OrderStatusOutForDelivery, RoleDriver, ""},
		{"waiter cannot take out", OrderStatusReady, OrderStatusOutForDelivery, RoleWaiter, EFORBIDDEN},
		{"driver delivers", OrderStatusOutForDelivery, OrderStatusDelivered, RoleDriver, ""},
		{"waiter hands over pickup", OrderStatusReady, OrderStatusDelivered, RoleWaiter, ""},
		{"admin does anything", OrderStatusReady, OrderStatusOutForDelivery, RoleAdmin, ""},
		{"admin still bound by machine", OrderStatusDelivered, OrderStatusPlaced, RoleAdmin, ECONFLICT},
		{"illegal move beats role check", OrderStatusPreparing, OrderStatusCancelled, RoleWaiter, ECONFLICT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeTransition(tt.from, tt.to, tt.role)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, ErrorCode(err))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPlaced.Terminal())
	assert.False(t, OrderStatusOutForDelivery.Terminal())
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleCustomer))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole(Role("chef")))
	assert.False(t, ValidRole(Role("")))
}
