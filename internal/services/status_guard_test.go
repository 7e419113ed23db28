package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ordersvc/internal/services"
)

func TestValidateStatusTransition_FullMatrix(t *testing.T) {
	statuses := []string{"pending", "processing", "shipped", "delivered", "cancelled"}

	legal := map[string]map[string]bool{
		"pending":    {"processing": true, "cancelled": true},
		"processing": {"shipped": true, "cancelled": true},
		"shipped":    {"delivered": true, "cancelled": true},
		"delivered":  {},
		"cancelled":  {"pending": true},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			err := services.ValidateStatusTransition(from, to)
			if from == to || legal[from][to] {
				assert.NoError(t, err, "expected %s -> %s to be legal", from, to)
			} else {
				assert.Error(t, err, "expected %s -> %s to be rejected", from, to)
				assert.Contains(t, err.Error(), "invalid status transition")
			}
		}
	}
}

func TestValidateStatusTransition_UnknownStatuses(t *testing.T) {
	err := services.ValidateStatusTransition("bogus", "pending")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown current status: bogus")

	err = services.ValidateStatusTransition("pending", "bogus")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target status: bogus")
}

func TestValidateStatusTransition_DeliveredIsTerminal(t *testing.T) {
	for _, to := range []string{"pending", "processing", "shipped", "cancelled"} {
		assert.Error(t, services.ValidateStatusTransition("delivered", to))
	}
	assert.NoError(t, services.ValidateStatusTransition("delivered", "delivered"))
}
