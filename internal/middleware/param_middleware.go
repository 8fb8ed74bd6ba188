package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam извлекает числовой параметр пути и кладет его в контекст
// под ключом contextKey как uint. Ноль и нечисловые значения отклоняются:
// идентификаторы сущностей начинаются с единицы.
//
// Обработчики дальше по цепочке читают значение через
// c.MustGet(contextKey).(uint).
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("invalid %s parameter: %q", paramName, raw),
			})
			c.Abort()
			return
		}

		c.Set(contextKey, uint(id))
		c.Next()
	}
}
