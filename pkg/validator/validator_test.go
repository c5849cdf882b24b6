package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Content string `json:"content" binding:"required,notblank"`
	Type    string `json:"type" binding:"omitempty,fragment_type"`
}

func TestRegister_CustomTags(t *testing.T) {
	uni, err := Register()
	require.NoError(t, err)
	require.NotNil(t, uni)

	v := binding.Validator
	assert.NoError(t, v.ValidateStruct(&sample{Content: "buy milk", Type: "collection"}))
	assert.NoError(t, v.ValidateStruct(&sample{Content: "x"}))

	err = v.ValidateStruct(&sample{Content: "   "})
	require.Error(t, err)
	var verrs validatorV10.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "content", verrs[0].Field())
	assert.Equal(t, "notblank", verrs[0].Tag())

	err = v.ValidateStruct(&sample{Content: "x", Type: "poem"})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "fragment_type", verrs[0].Tag())
}

func TestValidateStruct_NonStruct(t *testing.T) {
	v := NewCustomValidator()
	assert.NoError(t, v.ValidateStruct("plain"))
}
