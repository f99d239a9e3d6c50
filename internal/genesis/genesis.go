package genesis

import (
	"encoding/json"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/apocnet/apoc-ledger/internal/executor/system"
	"github.com/apocnet/apoc-ledger/internal/executor/system/common"
	"github.com/apocnet/apoc-ledger/internal/ledger"
	"github.com/apocnet/apoc-ledger/pkg/repo"
)

var genesisConfigKey = []byte("genesis_cfg")

// Initialize writes the genesis state: the genesis config snapshot plus every
// system contract's initial storage.
func Initialize(genesis *repo.GenesisConfig, lg ledger.StateLedger) error {
	if IsInitialized(lg) {
		return errors.New("genesis already initialized")
	}
	if err := storeGenesisConfig(genesis, lg); err != nil {
		return err
	}
	if err := system.New().GenesisInit(genesis, lg); err != nil {
		return err
	}
	lg.Finalise()
	return nil
}

func IsInitialized(lg ledger.StateLedger) bool {
	if !lg.HasAccount(ethcommon.HexToAddress(common.ZeroAddress)) {
		return false
	}
	account := lg.GetAccount(ethcommon.HexToAddress(common.ZeroAddress))
	exists, _ := account.GetState(genesisConfigKey)
	return exists
}

// StoredGenesisConfig reads back the config snapshot written at genesis.
func StoredGenesisConfig(lg ledger.StateLedger) (*repo.GenesisConfig, error) {
	if !IsInitialized(lg) {
		return nil, errors.New("genesis not initialized")
	}
	account := lg.GetAccount(ethcommon.HexToAddress(common.ZeroAddress))
	_, raw := account.GetState(genesisConfigKey)
	genesis := &repo.GenesisConfig{}
	if err := json.Unmarshal(raw, genesis); err != nil {
		return nil, errors.Wrap(err, "unmarshal genesis config")
	}
	return genesis, nil
}

func storeGenesisConfig(genesis *repo.GenesisConfig, lg ledger.StateLedger) error {
	raw, err := json.Marshal(genesis)
	if err != nil {
		return errors.Wrap(err, "marshal genesis config")
	}
	account := lg.GetOrCreateAccount(ethcommon.HexToAddress(common.ZeroAddress))
	account.SetState(genesisConfigKey, raw)
	return nil
}
