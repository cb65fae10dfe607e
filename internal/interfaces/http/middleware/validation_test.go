package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleLine struct {
	PurchaseType string `json:"purchase_type" binding:"required,purchase_type"`
	VolumeMl     int64  `json:"volume_ml" binding:"required,min=1"`
	Items        []int  `json:"items" binding:"required,min=1"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req saleLine
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator_Idempotent(t *testing.T) {
	SetupValidator()
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NoError(t, v.Var("REFILL", "purchase_type"))
	assert.NoError(t, v.Var("NEW_BOTTLE", "purchase_type"))
	assert.Error(t, v.Var("BOTTLE", "purchase_type"))
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"purchase_type":"GIFT","volume_ml":0,"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	byField := map[string]string{}
	for _, d := range resp.Error.Details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "Must be REFILL or NEW_BOTTLE", byField["purchase_type"])
	assert.Equal(t, "This field is required", byField["volume_ml"])
	assert.Equal(t, "Must contain at least 1 item(s)", byField["items"])
}

func TestHandleValidationError_MalformedBody(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"purchase_type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
	assert.Contains(t, resp.Error.Message, "Malformed request body")
}

func TestHandleValidationError_Valid(t *testing.T) {
	w := postJSON(newValidationRouter(), `{"purchase_type":"REFILL","volume_ml":30,"items":[1]}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
