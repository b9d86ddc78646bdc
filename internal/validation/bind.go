package validation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate reads the whole JSON body into `out` and runs validation.
// The body is read to the end before decoding, so a size limit on the request
// body applies to every byte sent and data after the JSON value is refused.
// On failure it writes a generic rejection (413 for an oversized body, 400
// otherwise) and returns the error so the handler can short-circuit and log it.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge))
			return err
		}
		c.String(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return err
	}

	// json.Unmarshal rejects trailing data, unlike gin's streaming decoder.
	if err := json.Unmarshal(raw, out); err != nil {
		c.String(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return err
	}

	if err := v.Struct(out); err != nil {
		c.String(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return err
	}
	return nil
}
