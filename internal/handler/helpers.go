package handler

import (
	"errors"
	"net/http"
	"reflect"

	"modapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// newValidator registers decimal.Decimal as a numeric type so tags like
// min=0 and gt=0 apply to money fields instead of panicking on the struct.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// bindAndValidate binds the JSON body and runs the validator tags. On failure
// it writes the error response and returns false; the caller just returns.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	var verr validator.ValidationErrors
	if err := validate.Struct(req); err != nil {
		if errors.As(err, &verr) {
			fields := make(map[string]string, len(verr))
			for _, fe := range verr {
				fields[fe.Field()] = fe.Tag()
			}
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		} else {
			c.JSON(http.StatusBadRequest, apierror.New("solicitud invalida"))
		}
		return false
	}
	return true
}

// pathID parses the :id (or named) route param as a UUID, answering 400 on
// garbage so repositories never see malformed ids.
func pathID(c *gin.Context, nombre string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(nombre))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(nombre+" invalido"))
		return uuid.Nil, false
	}
	return id, true
}
