package network

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	stakecrypto "github.com/thrylos-labs/stakeledger/crypto"
	"go.uber.org/zap"
)

const (
	loginSkew     = 5 * time.Minute
	loginTokenTTL = 24 * time.Hour
)

type loginRequest struct {
	PublicKey string `json:"publicKey" valid:"required,hexadecimal"`
	Timestamp int64  `json:"timestamp" valid:"required"`
	Signature string `json:"signature" valid:"required,hexadecimal"`
}

type loginResponse struct {
	Principal string `json:"principal"`
	Token     string `json:"token"`
}

// LoginMessage is what a key holder signs to obtain a bearer token.
func LoginMessage(principal string, timestamp int64) []byte {
	return []byte("stakeledger-login:" + principal + ":" + strconv.FormatInt(timestamp, 10))
}

// handleLogin exchanges a fresh ML-DSA-44 signature for a bearer token
// whose subject is the address of the signing key.
func (router *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		router.writeError(w, err)
		return
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		router.writeError(w, errors.Wrap(errInvalidRequest, err.Error()))
		return
	}

	pk, err := stakecrypto.PublicKeyFromHex(req.PublicKey)
	if err != nil {
		router.writeError(w, errors.Wrap(errInvalidRequest, err.Error()))
		return
	}
	addr, err := pk.Address()
	if err != nil {
		router.writeError(w, errors.Wrap(errInvalidRequest, err.Error()))
		return
	}
	principal := addr.String()

	skew := time.Since(time.Unix(req.Timestamp, 0))
	if skew > loginSkew || skew < -loginSkew {
		router.writeError(w, errors.Wrap(errUnauthenticated, "login timestamp outside the accepted window"))
		return
	}
	sig, err := hex.DecodeString(req.Signature)
	if err != nil {
		router.writeError(w, errors.Wrap(errInvalidRequest, err.Error()))
		return
	}
	if err := pk.Verify(LoginMessage(principal, req.Timestamp), sig); err != nil {
		router.logger.Info("login signature rejected", zap.String("principal", principal))
		router.writeError(w, errors.Wrap(errUnauthenticated, err.Error()))
		return
	}

	tok, err := IssueToken(router.secret, principal, loginTokenTTL)
	if err != nil {
		router.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Principal: principal, Token: tok})
}
