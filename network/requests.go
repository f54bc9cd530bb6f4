package network

import (
	"encoding/json"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/amount"
)

const maxBodySize = 1 << 16

type stakeRequest struct {
	// Amount is a base-10 count of the smallest unit, sent as a string so
	// values above 2^53 survive JSON clients.
	Amount string `json:"amount" valid:"required,numeric"`
}

func (s *stakeRequest) parse() (amount.Amount, error) {
	if _, err := govalidator.ValidateStruct(s); err != nil {
		return 0, errors.Wrap(errInvalidRequest, err.Error())
	}
	return amount.Parse(s.Amount)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errInvalidRequest, err.Error())
	}
	return nil
}
