package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type borrowReq struct {
	Action    string `json:"action" validate:"required,oneof=borrow return"`
	Equipment string `json:"equipment" validate:"required"`
	Qty       int    `json:"qty" validate:"gt=0"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(borrowReq{Action: "borrow", Equipment: "Ball", Qty: 1}))
}

func TestStruct_UsesJSONNames(t *testing.T) {
	err := Struct(borrowReq{Action: "lend", Qty: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action must be one of [borrow return]")
	assert.Contains(t, err.Error(), "equipment is required")
	assert.Contains(t, err.Error(), "qty must be greater than 0")
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@uni.ac.th"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("a @b.c"))
}
