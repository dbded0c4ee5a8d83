package pkg

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/procurebase/internal/domain"
)

// ParseID reads the positive integer path parameter "id".
func ParseID(c *gin.Context) (uint, error) {
	return parseUintParam(c.Param("id"), "id")
}

// ParseUintParam parses a positive integer list param such as a parent id.
// A missing value yields 0 and no error.
func ParseUintParam(params map[string]string, name string) (uint, error) {
	raw, ok := params[name]
	if !ok {
		return 0, nil
	}
	return parseUintParam(raw, name)
}

func parseUintParam(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, domain.NewAppError(domain.CodeValidation, "invalid "+name+": "+raw, err)
	}
	return uint(id), nil
}
