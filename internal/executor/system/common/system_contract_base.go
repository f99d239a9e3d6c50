package common

import (
	"encoding/json"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/apocnet/apoc-ledger/internal/ledger"
	"github.com/apocnet/apoc-ledger/pkg/loggers"
)

// SystemContractBase carries the per-contract identity and per-action context
// shared by all system contracts. Contracts embed it and wire their storage
// slots in SetContext.
type SystemContractBase struct {
	Logger       logrus.FieldLogger
	Address      ethcommon.Address
	Ctx          *VMContext
	StateAccount ledger.IAccount
}

func (b *SystemContractBase) SetContext(ctx *VMContext) {
	b.Ctx = ctx
	b.StateAccount = ctx.StateLedger.GetOrCreateAccount(b.Address)
}

// CrossCallSystemContractContext derives a context for calling another system
// contract on behalf of this one: the callee sees this contract as the
// authenticated caller.
func (b *SystemContractBase) CrossCallSystemContractContext() *VMContext {
	cross := *b.Ctx
	cross.From = b.Address
	cross.CallFromSystem = true
	return &cross
}

// CallFromSelf reports whether the action is authenticated as the contract
// itself (the node's system context or the contract's own address).
func (b *SystemContractBase) CallFromSelf() bool {
	return b.Ctx.CallFromSystem || b.Ctx.From == b.Address
}

// Revert aborts the current action. The executor rolls back every state
// mutation of the transaction when a non-nil error propagates out.
func (b *SystemContractBase) Revert(err error) error {
	if err != nil {
		b.Logger.WithField("contract", b.Address).Debugf("revert: %s", err)
	}
	return err
}

// EmitEvent records an event log addressed to this contract. The event name
// hash is the first topic, the JSON-encoded payload the data.
func (b *SystemContractBase) EmitEvent(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.Logger.Errorf("emit event %s: %s", name, err)
		return
	}
	b.Ctx.StateLedger.AddLog(&ledger.Log{
		Address: b.Address,
		Topics:  []ethcommon.Hash{crypto.Keccak256Hash([]byte(name))},
		Data:    data,
	})
}

// SystemContractBuildConfig declares a system contract: its well-known
// address and how to construct an instance bound to a context.
type SystemContractBuildConfig[T SystemContract] struct {
	Name        string
	Address     string
	Constructor func(systemContractBase SystemContractBase) T
}

func (cfg *SystemContractBuildConfig[T]) Build(ctx *VMContext) T {
	contract := cfg.Constructor(SystemContractBase{
		Logger:  loggers.Logger(loggers.SystemContract).WithField("contract", cfg.Name),
		Address: ethcommon.HexToAddress(cfg.Address),
	})
	contract.SetContext(ctx)
	return contract
}

func (cfg *SystemContractBuildConfig[T]) ContractAddress() ethcommon.Address {
	return ethcommon.HexToAddress(cfg.Address)
}
