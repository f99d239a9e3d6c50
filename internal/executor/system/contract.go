package system

import (
	"sort"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/apocnet/apoc-ledger/internal/executor/system/common"
	"github.com/apocnet/apoc-ledger/internal/executor/system/token"
	"github.com/apocnet/apoc-ledger/internal/executor/system/vesting"
	"github.com/apocnet/apoc-ledger/internal/ledger"
	"github.com/apocnet/apoc-ledger/pkg/loggers"
	"github.com/apocnet/apoc-ledger/pkg/repo"
)

var ErrNotExistSystemContract = errors.New("not exist this system contract")

type contractBuilder struct {
	name    string
	address ethcommon.Address
	build   func(ctx *common.VMContext) common.SystemContract
}

// NativeVM owns the system contract registry: which well-known addresses are
// contracts and how to bind an instance to a per-action context.
type NativeVM struct {
	logger   logrus.FieldLogger
	builders map[ethcommon.Address]*contractBuilder
}

func New() *NativeVM {
	nvm := &NativeVM{
		logger:   loggers.Logger(loggers.SystemContract),
		builders: make(map[ethcommon.Address]*contractBuilder),
	}
	deploy(nvm, token.TokenBuildConfig)
	deploy(nvm, vesting.VestingBuildConfig)
	return nvm
}

func deploy[T common.SystemContract](nvm *NativeVM, cfg *common.SystemContractBuildConfig[T]) {
	addr := cfg.ContractAddress()
	if _, ok := nvm.builders[addr]; ok {
		panic("deploy system contract repeated: " + cfg.Name)
	}
	nvm.builders[addr] = &contractBuilder{
		name:    cfg.Name,
		address: addr,
		build: func(ctx *common.VMContext) common.SystemContract {
			return cfg.Build(ctx)
		},
	}
}

func (nvm *NativeVM) IsSystemContract(addr ethcommon.Address) bool {
	_, ok := nvm.builders[addr]
	return ok
}

// GetContract binds the contract at addr to ctx.
func (nvm *NativeVM) GetContract(addr ethcommon.Address, ctx *common.VMContext) (common.SystemContract, error) {
	builder, ok := nvm.builders[addr]
	if !ok {
		return nil, ErrNotExistSystemContract
	}
	return builder.build(ctx), nil
}

// GenesisInit runs every registered contract's genesis hook, in address order
// so initialization is deterministic.
func (nvm *NativeVM) GenesisInit(genesis *repo.GenesisConfig, lg ledger.StateLedger) error {
	builders := lo.Values(nvm.builders)
	sort.Slice(builders, func(i, j int) bool {
		return builders[i].address.Hex() < builders[j].address.Hex()
	})

	for _, builder := range builders {
		contract := builder.build(&common.VMContext{
			StateLedger:    lg,
			BlockNumber:    1,
			CallFromSystem: true,
		})
		if err := contract.GenesisInit(genesis); err != nil {
			return errors.Wrapf(err, "genesis init %s", builder.name)
		}
		nvm.logger.WithField("contract", builder.name).Info("genesis init done")
	}
	return nil
}
