package wormhole

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
)

func TestLocateMessage_Found(t *testing.T) {
	core := common.HexToAddress("0x000000000000000000000000000000000000aa")

	var data [32]byte
	binaryPutUint64(data[24:32], 777)

	receipt := &types.Receipt{
		Logs: []*types.Log{
			{Address: common.HexToAddress("0xbb"), Topics: []common.Hash{{0x01}}},
			{Address: core, Topics: []common.Hash{wormholeCoreTopic, {0x02}}, Data: data[:]},
		},
	}

	seq, err := (&Service{}).LocateMessage(receipt, core)
	require.NoError(t, err)
	require.Equal(t, uint64(777), seq)
}

func TestLocateMessage_NotFound(t *testing.T) {
	core := common.HexToAddress("0x000000000000000000000000000000000000aa")
	receipt := &types.Receipt{Logs: []*types.Log{{Address: common.HexToAddress("0xbb")}}}

	_, err := (&Service{}).LocateMessage(receipt, core)
	require.Error(t, err)
	require.Equal(t, apperrors.KindValidation, apperrors.Classify(err))
}

func binaryPutUint64(dst []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}

func TestFetchAndVerify_Success(t *testing.T) {
	var emitter [32]byte
	emitter[31] = 0x09

	raw := buildRawVAA(t, 21, emitter, 42, []byte("payload"))
	encoded := base64.StdEncoding.EncodeToString(raw)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"vaaBytes":"` + encoded + `"}`))
	}))
	defer srv.Close()

	svc := NewService(srv.URL, 5*time.Second, map[uint16][32]byte{21: emitter})

	vaa, err := svc.FetchAndVerify(context.Background(), 21, emitter, 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), vaa.Sequence)
}

func TestFetchAndVerify_InvalidEmitter(t *testing.T) {
	var emitter, other [32]byte
	emitter[31] = 0x09
	other[31] = 0xff

	raw := buildRawVAA(t, 21, emitter, 42, nil)
	encoded := base64.StdEncoding.EncodeToString(raw)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vaaBytes":"` + encoded + `"}`))
	}))
	defer srv.Close()

	svc := NewService(srv.URL, 5*time.Second, map[uint16][32]byte{21: other})

	_, err := svc.FetchAndVerify(context.Background(), 21, emitter, 42)
	require.Error(t, err)
	require.Equal(t, apperrors.KindVAAInvalidEmitter, apperrors.Classify(err))
}

func TestFetchAndVerify_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var emitter [32]byte
	svc := NewService(srv.URL, 2*time.Second, map[uint16][32]byte{21: emitter})

	_, err := svc.FetchAndVerify(context.Background(), 21, emitter, 1)
	require.Error(t, err)
	require.Equal(t, apperrors.KindVAANotFound, apperrors.Classify(err))
}
