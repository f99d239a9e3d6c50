package main

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/apocnet/apoc-ledger/internal/executor/system"
	"github.com/apocnet/apoc-ledger/internal/executor/system/common"
	"github.com/apocnet/apoc-ledger/internal/executor/system/token"
	"github.com/apocnet/apoc-ledger/internal/genesis"
	"github.com/apocnet/apoc-ledger/internal/ledger"
	"github.com/apocnet/apoc-ledger/pkg/loggers"
)

var genesisCMD = &cli.Command{
	Name:  "genesis",
	Usage: "The genesis manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "check",
			Usage:  "Execute the genesis config against an in-memory ledger and report the resulting state",
			Action: checkGenesis,
		},
	},
}

// checkGenesis runs the full genesis initialization, so a broken config is
// caught before a node ever persists it.
func checkGenesis(ctx *cli.Context) error {
	rep, err := loadRepo(ctx)
	if err != nil {
		return err
	}
	if err := loggers.Initialize(rep); err != nil {
		return err
	}

	lg := ledger.NewMemory()
	if err := genesis.Initialize(rep.GenesisConfig, lg); err != nil {
		return err
	}

	nvm := system.New()
	contract, err := nvm.GetContract(token.TokenBuildConfig.ContractAddress(), &common.VMContext{
		StateLedger: lg,
		BlockNumber: 1,
	})
	if err != nil {
		return err
	}
	tokenContract := contract.(*token.Token)

	symbol, err := tokenContract.TokenSymbol()
	if err != nil {
		return err
	}
	maxSupply, err := tokenContract.MaxSupplyOf(symbol.Code)
	if err != nil {
		return err
	}
	blocked, err := tokenContract.Blocked()
	if err != nil {
		return err
	}

	fmt.Printf("genesis config is valid\n")
	fmt.Printf("token: %s (%s)\n", tokenContract.Name(), symbol.String())
	fmt.Printf("max supply: %s\n", maxSupply.String())
	fmt.Printf("transfers blocked: %v\n", blocked)
	for _, capAccount := range rep.GenesisConfig.CapabilityAccounts {
		addr := ethcommon.HexToAddress(capAccount.Address)
		fmt.Printf("capability account %s: %v\n", addr, capAccount.Capabilities)
	}
	return nil
}
