package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKAndFail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")
	OK(c, 0, map[string]string{"k": "v"}, "done")

	require.Equal(t, http.StatusOK, w.Code)
	var ok APIResponse[map[string]string]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Success)
	assert.Equal(t, "req-1", ok.RequestID)
	assert.Equal(t, "v", ok.Data["k"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Fail(c, http.StatusConflict, "stale", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, c.IsAborted())
	var bad APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	assert.False(t, bad.Success)
	assert.Equal(t, "stale", bad.Message)
}
