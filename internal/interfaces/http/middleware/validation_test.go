package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetupValidator()
}

type quantityPayload struct {
	Quantity string `json:"quantity" binding:"required,dpositive"`
	Rate     string `json:"rate" binding:"omitempty,decimal"`
}

func bindJSON(t *testing.T, body string) error {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var payload quantityPayload
	return c.ShouldBindJSON(&payload)
}

func TestDecimalValidators(t *testing.T) {
	t.Run("accepts positive decimal quantities", func(t *testing.T) {
		require.NoError(t, bindJSON(t, `{"quantity": "2.5"}`))
		require.NoError(t, bindJSON(t, `{"quantity": "10"}`))
	})

	t.Run("rejects non-numeric quantities", func(t *testing.T) {
		err := bindJSON(t, `{"quantity": "lots"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dpositive")
	})

	t.Run("rejects zero and negative quantities", func(t *testing.T) {
		require.Error(t, bindJSON(t, `{"quantity": "0"}`))
		require.Error(t, bindJSON(t, `{"quantity": "-3"}`))
	})

	t.Run("decimal tag allows zero but not garbage", func(t *testing.T) {
		require.NoError(t, bindJSON(t, `{"quantity": "1", "rate": "0"}`))
		require.Error(t, bindJSON(t, `{"quantity": "1", "rate": "abc"}`))
	})

	t.Run("omitempty skips absent optional fields", func(t *testing.T) {
		require.NoError(t, bindJSON(t, `{"quantity": "1"}`))
	})

	t.Run("field names in errors use json tags", func(t *testing.T) {
		err := bindJSON(t, `{}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quantity")
	})
}
