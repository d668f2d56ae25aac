package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// flexString accepts a JSON string, number or null. Form inputs arrive as
// strings, API clients may send numbers for quantities and prices.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("value must be a string or a number")
		}
		*s = flexString(n.String())
	}
	return nil
}

type fieldPayload struct {
	Field string     `json:"field" validate:"required,max=64"`
	Value flexString `json:"value" validate:"max=4000"`
}

type adjustmentPayload struct {
	Amount *flexString `json:"amount" validate:"omitempty,max=64"`
	Unit   *string     `json:"unit" validate:"omitempty,oneof=percentage fixed"`
}

// decode reads a single JSON object from the request body and validates it.
func (h *Handler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBadPayload("request body is empty", nil)
		}
		return errBadPayload("invalid payload", nil)
	}
	if err := h.validate().Struct(dst); err != nil {
		return errBadPayload("invalid payload", validationDetails(err))
	}
	return nil
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		details[field] = fe.Tag()
	}
	return details
}
