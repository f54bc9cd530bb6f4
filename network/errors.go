package network

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/amount"
	"github.com/thrylos-labs/stakeledger/balance"
	"github.com/thrylos-labs/stakeledger/staking"
	"go.uber.org/zap"
)

var errInvalidRequest = errors.New("invalid request")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an engine or request error to an HTTP status and a
// stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, staking.ErrZeroAmount):
		return http.StatusBadRequest, "zero_amount"
	case errors.Is(err, staking.ErrInvalidPrincipal),
		errors.Is(err, amount.ErrInvalidAmount),
		errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, staking.ErrAlreadyStaked):
		return http.StatusConflict, "already_staked"
	case errors.Is(err, staking.ErrNoActiveStake):
		return http.StatusNotFound, "no_active_stake"
	case errors.Is(err, staking.ErrTransferFailed),
		errors.Is(err, balance.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "transfer_failed"
	case errors.Is(err, staking.ErrOverflow),
		errors.Is(err, amount.ErrOverflow):
		return http.StatusUnprocessableEntity, "overflow"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (router *Router) writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		router.logger.Error("request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
