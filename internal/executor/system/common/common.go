package common

import (
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/apocnet/apoc-ledger/internal/ledger"
	"github.com/apocnet/apoc-ledger/pkg/repo"
)

const (
	// ZeroAddress is a special address, no one has control
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// system contract address range 0x1000-0xffff, avoid conflicts with
	// precompiled contracts
	SystemContractStartAddr = "0x0000000000000000000000000000000000001000"

	// TokenContractAddr is the token ledger contract: supply stats, balances,
	// transfer block flag, capability table
	TokenContractAddr = "0x0000000000000000000000000000000000001001"

	// VestingContractAddr is the vesting contract: pool configs and grants
	VestingContractAddr = "0x0000000000000000000000000000000000001002"

	SystemContractEndAddr = "0x000000000000000000000000000000000000ffff"
)

// VMContext is the per-action execution context. The host runtime serializes
// actions; one context never outlives its transaction.
type VMContext struct {
	StateLedger ledger.StateLedger

	BlockNumber uint64

	// Timestamp is the block time in unix seconds; contracts read time only
	// from here so that execution stays deterministic.
	Timestamp uint64

	// From is the authenticated caller of the action.
	From ethcommon.Address

	// CallFromSystem marks contexts created by the node itself (genesis init)
	// or by a cross-contract call from another system contract.
	CallFromSystem bool
}

// SystemContract must be implemented by all system contracts.
type SystemContract interface {
	SetContext(ctx *VMContext)

	GenesisInit(genesis *repo.GenesisConfig) error
}
