package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONRPCClient_Call_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonrpcRequest
		require.NoError(t, decodeJSON(r, &req))
		require.Equal(t, "sui_executeMoveCall", req.Method)

		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"digest":"0xabc"}}`))
	}))
	defer srv.Close()

	c := newJSONRPCClient(srv.URL)
	var out struct {
		Digest string `json:"digest"`
	}
	err := c.call(context.Background(), "sui_executeMoveCall", []interface{}{"a", "b"}, &out)
	require.NoError(t, err)
	require.Equal(t, "0xabc", out.Digest)
}

func TestJSONRPCClient_Call_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`))
	}))
	defer srv.Close()

	c := newJSONRPCClient(srv.URL)
	err := c.call(context.Background(), "method", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "execution reverted")
}

func TestJSONRPCClient_Call_NilOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	}))
	defer srv.Close()

	c := newJSONRPCClient(srv.URL)
	require.NoError(t, c.call(context.Background(), "method", nil, nil))
}

func decodeJSON(r *http.Request, out *jsonrpcRequest) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
