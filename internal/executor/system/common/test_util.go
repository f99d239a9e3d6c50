package common

import (
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/apocnet/apoc-ledger/internal/ledger"
	"github.com/apocnet/apoc-ledger/pkg/repo"
)

type TestNVM struct {
	t           testing.TB
	Rep         *repo.Repo
	StateLedger ledger.StateLedger
}

func NewTestNVM(t testing.TB) *TestNVM {
	return &TestNVM{
		t:           t,
		Rep:         repo.MockRepo(t),
		StateLedger: ledger.NewMemory(),
	}
}

func NewTestVMContext(stateLedger ledger.StateLedger, from ethcommon.Address) *VMContext {
	return &VMContext{
		StateLedger: stateLedger,
		BlockNumber: 1,
		Timestamp:   uint64(time.Now().Unix()),
		From:        from,
	}
}

func (nvm *TestNVM) GenesisInit(contracts ...SystemContract) {
	for _, contract := range contracts {
		contract.SetContext(&VMContext{
			StateLedger:    nvm.StateLedger,
			BlockNumber:    1,
			Timestamp:      uint64(time.Now().Unix()),
			CallFromSystem: true,
		})
		err := contract.GenesisInit(nvm.Rep.GenesisConfig)
		assert.Nil(nvm.t, err)
	}
}

type TestNVMRunOption func(ctx *VMContext)

func TestNVMRunOptionCallFromSystem() TestNVMRunOption {
	return func(ctx *VMContext) {
		ctx.CallFromSystem = true
	}
}

func TestNVMRunOptionTimestamp(ts uint64) TestNVMRunOption {
	return func(ctx *VMContext) {
		ctx.Timestamp = ts
	}
}

// RunSingleTX executes one action with transaction semantics: every state
// mutation is rolled back if the executor returns an error.
func (nvm *TestNVM) RunSingleTX(contract SystemContract, from ethcommon.Address, executor func() error, opts ...TestNVMRunOption) {
	snapshot := nvm.StateLedger.Snapshot()
	ctx := NewTestVMContext(nvm.StateLedger, from)
	for _, opt := range opts {
		opt(ctx)
	}
	contract.SetContext(ctx)
	if err := executor(); err != nil {
		nvm.StateLedger.RevertToSnapshot(snapshot)
		return
	}
	nvm.StateLedger.Finalise()
}

// Call executes a read-only query; all mutations are discarded afterwards.
func (nvm *TestNVM) Call(contract SystemContract, from ethcommon.Address, executor func(), opts ...TestNVMRunOption) {
	snapshot := nvm.StateLedger.Snapshot()
	ctx := NewTestVMContext(nvm.StateLedger, from)
	for _, opt := range opts {
		opt(ctx)
	}
	contract.SetContext(ctx)
	executor()
	nvm.StateLedger.RevertToSnapshot(snapshot)
}
