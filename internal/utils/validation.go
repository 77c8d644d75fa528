package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindAndValidate binds the request body to a struct and reports binding or
// validation failures as a BadRequest response. Returns false when the
// request was already answered.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+formatBindingError(err))
		return false
	}
	return true
}

func formatBindingError(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	var messages []string
	for _, e := range errs {
		messages = append(messages, e.Field()+" failed on '"+e.Tag()+"'")
	}
	return strings.Join(messages, ", ")
}
