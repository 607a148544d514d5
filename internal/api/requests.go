package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type userRequest struct {
	Key string `json:"key" validate:"required,max=256"`
}

type referralRequest struct {
	Referrer  string `json:"referrer" validate:"required,max=256"`
	Candidate string `json:"candidate" validate:"required,max=256"`
}

type simulateRequest struct {
	P      float64 `json:"p" validate:"gte=0,lte=1"`
	Days   int     `json:"days" validate:"gt=0,lte=36500"`
	Trials int     `json:"trials" validate:"gte=0"`
}

type daysToTargetRequest struct {
	P      float64 `json:"p" validate:"gte=0,lte=1"`
	Target int     `json:"target" validate:"gte=0"`
}

type optimizeRequest struct {
	Days    int    `json:"days" validate:"gt=0,lte=36500"`
	Target  int    `json:"target" validate:"gt=0"`
	Formula string `json:"formula" validate:"max=512"`
	Eps     *int   `json:"eps" validate:"omitempty,gte=0"`
}

// decode reads a JSON body into v and validates it. On failure it writes a
// 400 response and returns false.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
