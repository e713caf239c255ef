package redemption

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// l1RedeemerABIJSON describes the L1 BitcoinRedeemer method the redemption
// service calls once it holds a verified VAA for a redemption request. This
// is a distinct L1 contract from the Wormhole token bridge used on the
// deposit side for Sui/Sei bridging.
const l1RedeemerABIJSON = `[
  {"type":"function","name":"finalizeL2Redemption","stateMutability":"nonpayable",
   "inputs":[
     {"name":"walletPubKeyHash","type":"bytes32"},
     {"name":"mainUtxo","type":"tuple","components":[
       {"name":"txHash","type":"bytes32"},
       {"name":"txOutputIndex","type":"uint32"},
       {"name":"txOutputValue","type":"uint64"}
     ]},
     {"name":"amount","type":"uint256"},
     {"name":"encodedVm","type":"bytes"}
   ],"outputs":[]}
]`

var l1RedeemerABI abi.ABI

func init() {
	var err error
	l1RedeemerABI, err = abi.JSON(strings.NewReader(l1RedeemerABIJSON))
	if err != nil {
		panic(fmt.Sprintf("redemption: parse L1 redeemer ABI: %v", err))
	}
}
