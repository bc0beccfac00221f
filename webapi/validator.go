package webapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// decodeAndValidate decodes a JSON request body and validates it against
// the struct's validate tags. On failure the response has already been
// written and the handler should return.
func decodeAndValidate(r *http.Request, w http.ResponseWriter, req interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.WithError(err).Debug("Failed to decode request body")
		respondError(w, http.StatusBadRequest, "invalid request body")
		return err
	}

	if err := getValidator().Struct(req); err != nil {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				fields[verr.Field()] = fmt.Sprintf("failed %s validation", verr.Tag())
			}
		}
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  "invalid request",
			Fields: fields,
		})
		return err
	}

	return nil
}
