package util

import "github.com/gin-gonic/gin"

// ParamsToMap binds the JSON body into a T.
func ParamsToMap[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		return params, err
	}

	return params, nil
}
