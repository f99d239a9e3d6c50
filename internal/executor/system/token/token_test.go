package token

import (
	"strings"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/apocnet/apoc-ledger/internal/executor/system/common"
	"github.com/apocnet/apoc-ledger/pkg/repo"
	"github.com/apocnet/apoc-ledger/pkg/types"
)

var (
	issuerAddr   = ethcommon.HexToAddress(repo.DefaultIssuerAddr)
	investorAddr = ethcommon.HexToAddress(repo.DefaultInvestorAddr)
	stakingAddr  = ethcommon.HexToAddress(repo.DefaultStakingAddr)
	aliceAddr    = ethcommon.HexToAddress("0x1210000000000000000000000000000000000001")
	bobAddr      = ethcommon.HexToAddress("0x1210000000000000000000000000000000000002")
)

func apoc(value int64) types.Amount {
	return types.NewAmount(value, types.NewSymbol(repo.DefaultTokenSymbol, repo.DefaultTokenDecimals))
}

func buildTestToken(t *testing.T) (*common.TestNVM, *Token) {
	nvm := common.NewTestNVM(t)
	tokenContract := TokenBuildConfig.Build(common.NewTestVMContext(nvm.StateLedger, ethcommon.Address{}))
	nvm.GenesisInit(tokenContract)
	nvm.StateLedger.GetOrCreateAccount(aliceAddr)
	nvm.StateLedger.GetOrCreateAccount(bobAddr)
	return nvm, tokenContract
}

func TestToken_GenesisInit(t *testing.T) {
	nvm, tokenContract := buildTestToken(t)

	nvm.Call(tokenContract, issuerAddr, func() {
		assert.Equal(t, repo.DefaultTokenName, tokenContract.Name())

		symbol, err := tokenContract.TokenSymbol()
		assert.Nil(t, err)
		assert.Equal(t, repo.DefaultTokenSymbol, symbol.Code)
		assert.Equal(t, repo.DefaultTokenDecimals, tokenContract.Decimals())

		supply, err := tokenContract.TotalSupply(repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.True(t, supply.Zero())

		maxSupply, err := tokenContract.MaxSupplyOf(repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, repo.DefaultTokenMaxSupply, maxSupply.Value.String())

		blocked, err := tokenContract.Blocked()
		assert.Nil(t, err)
		assert.False(t, blocked)

		assert.True(t, tokenContract.HasCapability(investorAddr, CapabilityIssueTarget))
		assert.True(t, tokenContract.HasCapability(investorAddr, CapabilityToggleTransferBlock))
		assert.True(t, tokenContract.HasCapability(stakingAddr, CapabilityIssueTarget))
		assert.False(t, tokenContract.HasCapability(stakingAddr, CapabilityToggleTransferBlock))
		assert.True(t, tokenContract.HasCapability(ethcommon.HexToAddress(common.VestingContractAddr), CapabilityBypassTransferBlock))
		assert.False(t, tokenContract.HasCapability(aliceAddr, CapabilityIssueTarget))

		_, err = tokenContract.TotalSupply("NOPE")
		assert.Equal(t, common.ErrorKindNotFound, common.ErrorKindOf(err))
	})
}

func TestToken_Create(t *testing.T) {
	nvm, tokenContract := buildTestToken(t)

	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.Create(aliceAddr, types.NewAmount(1000, types.NewSymbol("SIDE", 2)))
		assert.Equal(t, common.ErrorKindAuthorization, common.ErrorKindOf(err))
		return err
	})

	nvm.RunSingleTX(tokenContract, ethcommon.Address{}, func() error {
		err := tokenContract.Create(aliceAddr, types.NewAmount(0, types.NewSymbol("SIDE", 2)))
		assert.ErrorContains(t, err, "max-supply must be positive")
		return err
	}, common.TestNVMRunOptionCallFromSystem())

	nvm.RunSingleTX(tokenContract, ethcommon.Address{}, func() error {
		return tokenContract.Create(aliceAddr, types.NewAmount(1000, types.NewSymbol("SIDE", 2)))
	}, common.TestNVMRunOptionCallFromSystem())

	nvm.RunSingleTX(tokenContract, ethcommon.Address{}, func() error {
		err := tokenContract.Create(bobAddr, types.NewAmount(9999, types.NewSymbol("SIDE", 2)))
		assert.Equal(t, common.ErrorKindAlreadyExists, common.ErrorKindOf(err))
		return err
	}, common.TestNVMRunOptionCallFromSystem())

	nvm.Call(tokenContract, aliceAddr, func() {
		supply, err := tokenContract.TotalSupply("SIDE")
		assert.Nil(t, err)
		assert.True(t, supply.Zero())
		assert.Equal(t, uint8(2), supply.Symbol.Decimals)
	})
}

func TestToken_Issue(t *testing.T) {
	nvm, tokenContract := buildTestToken(t)

	// ordinary accounts may neither issue nor receive issuance
	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.Issue(aliceAddr, apoc(100_0000), "")
		assert.ErrorContains(t, err, "issued to issuer or privileged accounts")
		return err
	})
	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.Issue(issuerAddr, apoc(100_0000), "")
		assert.Equal(t, common.ErrorKindAuthorization, common.ErrorKindOf(err))
		return err
	})

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Issue(issuerAddr, apoc(-5), "")
		assert.ErrorContains(t, err, "must issue positive quantity")
		return err
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Issue(issuerAddr, types.NewAmount(100, types.NewSymbol(repo.DefaultTokenSymbol, 2)), "")
		assert.ErrorContains(t, err, "symbol precision mismatch")
		return err
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Issue(issuerAddr, types.NewAmount(100, types.NewSymbol("NOPE", 4)), "")
		assert.ErrorContains(t, err, "create token before issue")
		return err
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Issue(issuerAddr, apoc(1), strings.Repeat("m", 257))
		assert.ErrorContains(t, err, "memo has more than 256 bytes")
		return err
	})

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Issue(issuerAddr, apoc(100_0000), "initial issuance")
	})
	// capability holder issues to itself
	nvm.RunSingleTX(tokenContract, investorAddr, func() error {
		return tokenContract.Issue(investorAddr, apoc(50_0000), "")
	})

	nvm.Call(tokenContract, issuerAddr, func() {
		supply, err := tokenContract.TotalSupply(repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "1500000", supply.Value.String())

		balance, err := tokenContract.BalanceOf(issuerAddr, repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "1000000", balance.Value.String())

		balance, err = tokenContract.BalanceOf(investorAddr, repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "500000", balance.Value.String())
	})

	// exceeding max supply reverts the whole action
	maxSupply := apoc(0)
	nvm.Call(tokenContract, issuerAddr, func() {
		m, err := tokenContract.MaxSupplyOf(repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		maxSupply = m
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Issue(issuerAddr, maxSupply, "")
		assert.ErrorContains(t, err, "quantity exceeds available supply")
		return err
	})
	nvm.Call(tokenContract, issuerAddr, func() {
		supply, err := tokenContract.TotalSupply(repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "1500000", supply.Value.String())
	})
}

func TestToken_Retire(t *testing.T) {
	nvm, tokenContract := buildTestToken(t)

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Issue(issuerAddr, apoc(100_0000), "")
	})

	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.Retire(apoc(10), "")
		assert.Equal(t, common.ErrorKindAuthorization, common.ErrorKindOf(err))
		return err
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Retire(apoc(200_0000), "")
		assert.ErrorContains(t, err, "overdrawn balance")
		return err
	})

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Retire(apoc(40_0000), "burn")
	})
	nvm.Call(tokenContract, issuerAddr, func() {
		supply, err := tokenContract.TotalSupply(repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "600000", supply.Value.String())
		balance, err := tokenContract.BalanceOf(issuerAddr, repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "600000", balance.Value.String())
	})
}

func TestToken_Transfer(t *testing.T) {
	nvm, tokenContract := buildTestToken(t)

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Issue(issuerAddr, apoc(100_0000), "")
	})

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Transfer(issuerAddr, issuerAddr, apoc(1), "")
		assert.ErrorContains(t, err, "cannot transfer to self")
		return err
	})
	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.Transfer(issuerAddr, aliceAddr, apoc(1), "")
		assert.Equal(t, common.ErrorKindAuthorization, common.ErrorKindOf(err))
		return err
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Transfer(issuerAddr, ethcommon.HexToAddress("0xdead000000000000000000000000000000000000"), apoc(1), "")
		assert.ErrorContains(t, err, "to account does not exist")
		return err
	})
	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.Transfer(aliceAddr, bobAddr, apoc(1), "")
		assert.ErrorContains(t, err, "no balance object found")
		return err
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Transfer(issuerAddr, aliceAddr, apoc(0), "")
		assert.ErrorContains(t, err, "must transfer positive quantity")
		return err
	})

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Transfer(issuerAddr, aliceAddr, apoc(30_0000), "grant")
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Transfer(issuerAddr, aliceAddr, apoc(80_0000), "")
		assert.ErrorContains(t, err, "overdrawn balance")
		return err
	})

	nvm.Call(tokenContract, issuerAddr, func() {
		issuerBalance, err := tokenContract.BalanceOf(issuerAddr, repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "700000", issuerBalance.Value.String())
		aliceBalance, err := tokenContract.BalanceOf(aliceAddr, repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "300000", aliceBalance.Value.String())

		// transfers conserve supply
		supply, err := tokenContract.TotalSupply(repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		sum, err := issuerBalance.Add(aliceBalance)
		assert.Nil(t, err)
		assert.Equal(t, 0, supply.Cmp(sum))
	})

	assert.NotEmpty(t, nvm.StateLedger.Logs())
}

func TestToken_TransferBlock(t *testing.T) {
	nvm, tokenContract := buildTestToken(t)

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Issue(issuerAddr, apoc(100_0000), "")
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Transfer(issuerAddr, investorAddr, apoc(50_0000), "")
	})

	// only toggle-capability holders or the contract itself may flip the flag
	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.SetTransferBlock(true)
		assert.Equal(t, common.ErrorKindAuthorization, common.ErrorKindOf(err))
		return err
	})
	nvm.RunSingleTX(tokenContract, investorAddr, func() error {
		return tokenContract.SetTransferBlock(true)
	})

	nvm.Call(tokenContract, aliceAddr, func() {
		blocked, err := tokenContract.Blocked()
		assert.Nil(t, err)
		assert.True(t, blocked)
	})

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Transfer(issuerAddr, aliceAddr, apoc(1_0000), "")
		assert.ErrorContains(t, err, "transfer not allowed")
		assert.Equal(t, common.ErrorKindState, common.ErrorKindOf(err))
		return err
	})
	// bypass-capability holders still send while blocked
	nvm.RunSingleTX(tokenContract, investorAddr, func() error {
		return tokenContract.Transfer(investorAddr, aliceAddr, apoc(1_0000), "")
	})

	nvm.RunSingleTX(tokenContract, investorAddr, func() error {
		return tokenContract.SetTransferBlock(false)
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Transfer(issuerAddr, aliceAddr, apoc(1_0000), "")
	})

	nvm.Call(tokenContract, aliceAddr, func() {
		balance, err := tokenContract.BalanceOf(aliceAddr, repo.DefaultTokenSymbol)
		assert.Nil(t, err)
		assert.Equal(t, "20000", balance.Value.String())
	})
}

func TestToken_OpenClose(t *testing.T) {
	nvm, tokenContract := buildTestToken(t)
	symbol := types.NewSymbol(repo.DefaultTokenSymbol, repo.DefaultTokenDecimals)

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Issue(issuerAddr, apoc(10_0000), "")
	})

	nvm.RunSingleTX(tokenContract, bobAddr, func() error {
		err := tokenContract.Open(aliceAddr, symbol, issuerAddr)
		assert.Equal(t, common.ErrorKindAuthorization, common.ErrorKindOf(err))
		return err
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Open(aliceAddr, types.NewSymbol("NOPE", 4), issuerAddr)
		assert.Equal(t, common.ErrorKindNotFound, common.ErrorKindOf(err))
		return err
	})
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		err := tokenContract.Open(aliceAddr, types.NewSymbol(repo.DefaultTokenSymbol, 2), issuerAddr)
		assert.ErrorContains(t, err, "symbol precision mismatch")
		return err
	})

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Open(aliceAddr, symbol, issuerAddr)
	})
	// opening an existing row is a no-op
	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Open(aliceAddr, symbol, issuerAddr)
	})

	nvm.RunSingleTX(tokenContract, issuerAddr, func() error {
		return tokenContract.Transfer(issuerAddr, aliceAddr, apoc(5_0000), "")
	})

	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.Close(aliceAddr, symbol)
		assert.ErrorContains(t, err, "balance is not zero")
		return err
	})
	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		return tokenContract.Transfer(aliceAddr, issuerAddr, apoc(5_0000), "")
	})
	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		return tokenContract.Close(aliceAddr, symbol)
	})
	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.Close(aliceAddr, symbol)
		assert.ErrorContains(t, err, "already deleted or never existed")
		return err
	})
}

func TestToken_Capabilities(t *testing.T) {
	nvm, tokenContract := buildTestToken(t)

	nvm.RunSingleTX(tokenContract, aliceAddr, func() error {
		err := tokenContract.GrantCapability(aliceAddr, CapabilityIssueTarget)
		assert.Equal(t, common.ErrorKindAuthorization, common.ErrorKindOf(err))
		return err
	})

	nvm.RunSingleTX(tokenContract, ethcommon.Address{}, func() error {
		return tokenContract.GrantCapability(aliceAddr, CapabilityIssueTarget|CapabilityBypassTransferBlock)
	}, common.TestNVMRunOptionCallFromSystem())

	nvm.Call(tokenContract, aliceAddr, func() {
		assert.True(t, tokenContract.HasCapability(aliceAddr, CapabilityIssueTarget))
		assert.True(t, tokenContract.HasCapability(aliceAddr, CapabilityBypassTransferBlock))
		assert.False(t, tokenContract.HasCapability(aliceAddr, CapabilityToggleTransferBlock))
	})

	nvm.RunSingleTX(tokenContract, ethcommon.Address{}, func() error {
		return tokenContract.RevokeCapability(aliceAddr, CapabilityIssueTarget)
	}, common.TestNVMRunOptionCallFromSystem())

	nvm.RunSingleTX(tokenContract, ethcommon.Address{}, func() error {
		err := tokenContract.RevokeCapability(bobAddr, CapabilityIssueTarget)
		assert.Equal(t, common.ErrorKindNotFound, common.ErrorKindOf(err))
		return err
	}, common.TestNVMRunOptionCallFromSystem())

	nvm.Call(tokenContract, aliceAddr, func() {
		assert.False(t, tokenContract.HasCapability(aliceAddr, CapabilityIssueTarget))
		assert.True(t, tokenContract.HasCapability(aliceAddr, CapabilityBypassTransferBlock))
	})
}

func TestCapabilityFromName(t *testing.T) {
	c, err := CapabilityFromName(repo.CapabilityNameIssueTarget)
	assert.Nil(t, err)
	assert.Equal(t, CapabilityIssueTarget, c)
	_, err = CapabilityFromName("fly")
	assert.ErrorContains(t, err, "unknown capability name")
}
