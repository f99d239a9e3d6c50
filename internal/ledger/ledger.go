package ledger

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// StateLedger is the durable keyed storage the host runtime provides to
// system contracts. Every action runs as one atomic transaction: the executor
// takes a snapshot before dispatch and reverts it if the action returns an
// error, so contracts never observe partially applied state.
type StateLedger interface {
	// GetAccount returns nil if the account has never been touched.
	GetAccount(addr ethcommon.Address) IAccount

	GetOrCreateAccount(addr ethcommon.Address) IAccount

	// HasAccount reports whether the account exists without creating it.
	HasAccount(addr ethcommon.Address) bool

	AddLog(log *Log)

	Logs() []*Log

	Snapshot() int

	RevertToSnapshot(snapshot int)

	Finalise()
}

// IAccount is a single account's view: a native balance plus a keyed record
// store scoped to the account.
type IAccount interface {
	GetAddress() ethcommon.Address

	GetState(key []byte) (bool, []byte)

	SetState(key []byte, value []byte)

	GetBalance() *big.Int

	SetBalance(balance *big.Int)

	AddBalance(amount *big.Int)

	SubBalance(amount *big.Int)

	GetNonce() uint64

	SetNonce(nonce uint64)
}

// Log is an event record emitted by a contract during an action.
type Log struct {
	Address ethcommon.Address
	Topics  []ethcommon.Hash
	Data    []byte
}
