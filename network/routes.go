package network

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/amount"
	"github.com/thrylos-labs/stakeledger/balance"
	"github.com/thrylos-labs/stakeledger/crypto/address"
	"github.com/thrylos-labs/stakeledger/staking"
	"github.com/thrylos-labs/stakeledger/types"
	"go.uber.org/zap"
)

func isWebSocketRequest(r *http.Request) bool {
	return strings.ToLower(r.Header.Get("Upgrade")) == "websocket"
}

// SetupRoutes configures the HTTP routes
func (router *Router) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(router.middlewareHandler())

	r.HandleFunc("/ping", router.handlePing).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/login", router.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/stake", router.requireCaller(router.handleStake)).Methods(http.MethodPost)
	v1.HandleFunc("/withdraw", router.requireCaller(router.handleWithdraw)).Methods(http.MethodPost)
	v1.HandleFunc("/stake", router.requireCaller(router.handleCallerStake)).Methods(http.MethodGet)
	v1.HandleFunc("/stake/{principal}", router.handlePrincipalStake).Methods(http.MethodGet)
	v1.HandleFunc("/reward/{principal}", router.handleReward).Methods(http.MethodGet)
	v1.HandleFunc("/balance/{account}", router.handleBalance).Methods(http.MethodGet)
	v1.HandleFunc("/stats", router.handleStats).Methods(http.MethodGet)
	if _, ok := router.ledger.(allowanceLedger); ok {
		v1.HandleFunc("/approve", router.requireCaller(router.handleApprove)).Methods(http.MethodPost)
	}

	if router.ws != nil {
		r.HandleFunc("/ws/events", router.ws.WebSocketEventsHandler).Methods(http.MethodGet)
	}
	return r
}

// allowanceLedger is implemented by ledgers that gate TransferIn on an
// allowance granted to custody.
type allowanceLedger interface {
	Approve(owner, spender string, amt amount.Amount) error
	Allowance(owner, spender string) amount.Amount
	Custody() string
}

type allowanceView struct {
	Owner     string        `json:"owner"`
	Spender   string        `json:"spender"`
	Allowance amount.Amount `json:"allowance"`
}

type stakeView struct {
	Principal string        `json:"principal"`
	Amount    amount.Amount `json:"amount"`
	StartTime int64         `json:"startTime,omitempty"`
}

type rewardView struct {
	Principal string        `json:"principal"`
	Reward    amount.Amount `json:"reward"`
}

type balanceView struct {
	Account   string        `json:"account"`
	Balance   amount.Amount `json:"balance"`
	Formatted string        `json:"formatted"`
}

type statsView struct {
	types.PoolStats
	Execution map[string]interface{} `json:"execution"`
}

func (router *Router) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (router *Router) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decodeBody(w, r, &req); err != nil {
		router.writeError(w, err)
		return
	}
	amt, err := req.parse()
	if err != nil {
		router.writeError(w, err)
		return
	}

	receipt, err := router.engine.Stake(r.Context(), callerFrom(r.Context()), amt)
	if err != nil {
		router.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (router *Router) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	res, err := router.engine.Withdraw(r.Context(), callerFrom(r.Context()))
	if err != nil {
		if errors.Is(err, staking.ErrTransferFailed) {
			router.logger.Warn("withdrawal not paid out",
				zap.String("principal", callerFrom(r.Context())),
				zap.Error(err))
		}
		router.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (router *Router) handleCallerStake(w http.ResponseWriter, r *http.Request) {
	router.writeStake(w, r, callerFrom(r.Context()))
}

func (router *Router) handlePrincipalStake(w http.ResponseWriter, r *http.Request) {
	principal := mux.Vars(r)["principal"]
	if !address.Validate(principal) {
		router.writeError(w, errors.Wrapf(errInvalidRequest, "%q is not a valid address", principal))
		return
	}
	router.writeStake(w, r, principal)
}

func (router *Router) writeStake(w http.ResponseWriter, r *http.Request, principal string) {
	view := stakeView{Principal: principal}
	pos, err := router.engine.Position(r.Context(), principal)
	switch {
	case errors.Is(err, staking.ErrNoActiveStake):
	case err != nil:
		router.writeError(w, err)
		return
	default:
		view.Amount = pos.Amount
		view.StartTime = pos.StartTime
	}
	writeJSON(w, http.StatusOK, view)
}

func (router *Router) handleReward(w http.ResponseWriter, r *http.Request) {
	principal := mux.Vars(r)["principal"]
	if !address.Validate(principal) {
		router.writeError(w, errors.Wrapf(errInvalidRequest, "%q is not a valid address", principal))
		return
	}
	reward, err := router.engine.PendingReward(r.Context(), principal)
	if err != nil {
		router.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rewardView{Principal: principal, Reward: reward})
}

func (router *Router) handleBalance(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	bal, err := router.ledger.BalanceOf(r.Context(), account)
	if err != nil {
		router.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceView{
		Account:   account,
		Balance:   bal,
		Formatted: balance.FormatBalance(bal),
	})
}

func (router *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := router.engine.Stats(r.Context())
	if err != nil {
		router.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsView{PoolStats: stats, Execution: router.engine.ExecutionStats()})
}

func (router *Router) handleApprove(w http.ResponseWriter, r *http.Request) {
	ledger := router.ledger.(allowanceLedger)

	var req stakeRequest
	if err := decodeBody(w, r, &req); err != nil {
		router.writeError(w, err)
		return
	}
	amt, err := req.parse()
	if err != nil {
		router.writeError(w, err)
		return
	}

	owner := callerFrom(r.Context())
	if err := ledger.Approve(owner, ledger.Custody(), amt); err != nil {
		router.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allowanceView{
		Owner:     owner,
		Spender:   ledger.Custody(),
		Allowance: ledger.Allowance(owner, ledger.Custody()),
	})
}
