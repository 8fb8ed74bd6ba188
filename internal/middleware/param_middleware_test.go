package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupParamRouter() (*gin.Engine, *uint) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var captured uint
	router.GET("/quizzes/:id", ExtractUintParam("id", "quizID"), func(c *gin.Context) {
		captured = c.MustGet("quizID").(uint)
		c.Status(http.StatusOK)
	})
	return router, &captured
}

func TestExtractUintParam_ValidID(t *testing.T) {
	router, captured := setupParamRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/quizzes/42", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), *captured, "Параметр должен попасть в контекст как uint")
}

func TestExtractUintParam_RejectsBadValues(t *testing.T) {
	router, _ := setupParamRouter()

	// Ноль, отрицательные и нечисловые значения не являются идентификаторами
	for _, raw := range []string{"0", "-1", "abc", "1.5", "99999999999999999999"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/quizzes/"+raw, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "Значение %q должно отклоняться", raw)
	}
}
