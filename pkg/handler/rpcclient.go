package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// jsonrpcClient is a minimal JSON-RPC 2.0 client shared by the platform
// adapters (Starknet, Solana, Sui) that have no official Go SDK in this
// build's dependency set. It follows the same wrap-a-bespoke-client
// pattern this lineage uses for chains without a mature Go SDK, rather
// than fabricating one.
type jsonrpcClient struct {
	url    string
	client *http.Client
}

func newJSONRPCClient(url string) *jsonrpcClient {
	return &jsonrpcClient{url: url, client: http.DefaultClient}
}

type jsonrpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type jsonrpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *jsonrpcClient) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	body, err := json.Marshal(jsonrpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("rpc: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("rpc: do request: %w", err)
	}
	defer resp.Body.Close()

	var rpcResp jsonrpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("rpc: decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc: %s (code %d)", rpcResp.Error.Message, rpcResp.Error.Code)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}
