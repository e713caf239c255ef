package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/registry"
)

func TestHandleReveal_InvalidJSON(t *testing.T) {
	h := NewDepositHandlers(nil, registry.New())
	req := httptest.NewRequest(http.MethodPost, "/api/not-configured/reveal", bytes.NewBufferString("not json"))
	req.SetPathValue("chainName", "not-configured")
	rec := httptest.NewRecorder()

	h.HandleReveal(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body revealErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Contains(t, body.Error, "invalid request body")
}

func TestHandleReveal_UnknownChain(t *testing.T) {
	h := NewDepositHandlers(nil, registry.New())
	payload := `{}`
	req := httptest.NewRequest(http.MethodPost, "/api/not-configured/reveal", bytes.NewBufferString(payload))
	req.SetPathValue("chainName", "not-configured")
	rec := httptest.NewRecorder()

	h.HandleReveal(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body revealErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Contains(t, body.Details, "not configured")
}

func TestHandleReveal_WrongMethod(t *testing.T) {
	h := NewDepositHandlers(nil, registry.New())
	req := httptest.NewRequest(http.MethodGet, "/api/some-chain/reveal", nil)
	req.SetPathValue("chainName", "some-chain")
	rec := httptest.NewRecorder()

	h.HandleReveal(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleDepositStatus_MissingID(t *testing.T) {
	h := NewDepositHandlers(nil, registry.New())
	req := httptest.NewRequest(http.MethodGet, "/api/deposits/", nil)
	rec := httptest.NewRecorder()

	h.HandleDepositStatus(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListDeposits_MissingChain(t *testing.T) {
	h := NewDepositHandlers(nil, registry.New())
	req := httptest.NewRequest(http.MethodGet, "/api/chains//deposits", nil)
	rec := httptest.NewRecorder()

	h.HandleListDeposits(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRequestRedemption_InvalidJSON(t *testing.T) {
	h := NewRedemptionHandlers(nil, registry.New())
	req := httptest.NewRequest(http.MethodPost, "/api/redemptions", bytes.NewBufferString("{bad"))
	rec := httptest.NewRecorder()

	h.HandleRequestRedemption(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRequestRedemption_UnknownChain(t *testing.T) {
	h := NewRedemptionHandlers(nil, registry.New())
	payload := `{"chainName":"ghost-chain","amount":"1000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/redemptions", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()

	h.HandleRequestRedemption(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRedemptionStatus_MissingID(t *testing.T) {
	h := NewRedemptionHandlers(nil, registry.New())
	req := httptest.NewRequest(http.MethodGet, "/api/redemptions/", nil)
	rec := httptest.NewRecorder()

	h.HandleRedemptionStatus(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStatus_ListsRegisteredChains(t *testing.T) {
	reg := registry.New()
	h := NewHealthHandlers(nil, reg)
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	h.HandleStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "chains")
}
