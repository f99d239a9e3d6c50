package vesting

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/apocnet/apoc-ledger/internal/executor/system/common"
	"github.com/apocnet/apoc-ledger/internal/executor/system/token"
	"github.com/apocnet/apoc-ledger/pkg/repo"
	"github.com/apocnet/apoc-ledger/pkg/types"
)

var VestingBuildConfig = &common.SystemContractBuildConfig[*Vesting]{
	Name:    "vesting",
	Address: common.VestingContractAddr,
	Constructor: func(systemContractBase common.SystemContractBase) *Vesting {
		return &Vesting{
			SystemContractBase: systemContractBase,
		}
	},
}

// Vesting manages pool configs and per-user grants, and settles claims by
// transferring tokens out of its own balance through the token contract.
type Vesting struct {
	common.SystemContractBase

	tokenSymbol *common.VMSlot[types.Symbol]
	configs     *common.VMMap[string, PoolConfig]
	grants      *common.VMMap[ethcommon.Address, Grant]
}

func (v *Vesting) SetContext(ctx *common.VMContext) {
	v.SystemContractBase.SetContext(ctx)

	v.tokenSymbol = common.NewVMSlot[types.Symbol](v.StateAccount, symbolStorageKey)
	v.configs = common.NewVMMap[string, PoolConfig](v.StateAccount, configsStorageKey, func(key string) string {
		return key
	})
	v.grants = common.NewVMMap[ethcommon.Address, Grant](v.StateAccount, grantsStorageKey, func(key ethcommon.Address) string {
		return key.String()
	})
}

func (v *Vesting) GenesisInit(genesis *repo.GenesisConfig) error {
	symbol := types.NewSymbol(genesis.Vesting.TokenSymbol, genesis.Vesting.TokenDecimals)
	if !symbol.Valid() {
		return common.Validationf("invalid symbol name")
	}
	return v.tokenSymbol.Put(symbol)
}

// AddConfig creates or updates a pool. Updates preserve the pool's counters
// so paused pools can be resumed and rates tuned without resetting accounting.
func (v *Vesting) AddConfig(pool string, tokenPool types.Amount, tgeRate, releasePeriod, cliffPeriod uint64, pauseClaim bool) error {
	if !v.CallFromSelf() {
		return v.Revert(common.Authorizationf("missing authority of vesting contract"))
	}
	if pool == "" || pool == PoolNone {
		return v.Revert(common.Validationf("invalid pool name"))
	}
	if tgeRate > maxTGERate {
		return v.Revert(common.Validationf("tge rate cannot exceed 100"))
	}
	if releasePeriod <= cliffPeriod {
		return v.Revert(common.Validationf("release period must be longer than cliff period"))
	}
	symbol, err := v.tokenSymbol.MustGet()
	if err != nil {
		return err
	}
	if !tokenPool.Valid() || !tokenPool.Positive() {
		return v.Revert(common.Validationf("token pool must be positive"))
	}
	if !tokenPool.Symbol.Equal(symbol) {
		return v.Revert(common.Validationf("symbol precision mismatch"))
	}

	config := PoolConfig{
		Pool:             pool,
		TokenPool:        tokenPool.Clone(),
		CurrentTokenPool: tokenPool.Clone(),
		TGERate:          tgeRate,
		ReleasePeriod:    releasePeriod,
		CliffPeriod:      cliffPeriod,
		PauseClaim:       pauseClaim,
	}
	exist, old, err := v.configs.Get(pool)
	if err != nil {
		return err
	}
	if exist {
		config.CurrentTokenPool = old.CurrentTokenPool
		config.UsersVested = old.UsersVested
	}
	return v.configs.Put(pool, config)
}

// Create opens a grant for user against a pool. The schedule is frozen into
// the grant; the TGE slice is immediately claimable.
func (v *Vesting) Create(pool string, user ethcommon.Address, quantity types.Amount, startDate, releaseDelay uint64) error {
	if !v.CallFromSelf() {
		return v.Revert(common.Authorizationf("missing authority of vesting contract"))
	}
	if user == (ethcommon.Address{}) || user == v.Address {
		return v.Revert(common.Validationf("invalid grant user"))
	}
	if !v.Ctx.StateLedger.HasAccount(user) {
		return v.Revert(common.Validationf("user account does not exist"))
	}

	exist, config, err := v.configs.Get(pool)
	if err != nil {
		return err
	}
	if !exist {
		return v.Revert(common.NotFoundf("pool config does not exist"))
	}
	if v.grants.Has(user) {
		return v.Revert(common.AlreadyExistsf("user already has a grant"))
	}

	symbol, err := v.tokenSymbol.MustGet()
	if err != nil {
		return err
	}
	if !quantity.Valid() || !quantity.Positive() {
		return v.Revert(common.Validationf("quantity must be positive"))
	}
	if !quantity.Symbol.Equal(symbol) {
		return v.Revert(common.Validationf("symbol precision mismatch"))
	}
	if startDate < v.Ctx.Timestamp {
		return v.Revert(common.Validationf("start date cannot be in the past"))
	}
	if releaseDelay == 0 {
		return v.Revert(common.Validationf("release delay must be positive"))
	}
	if config.ReleasePeriod-config.CliffPeriod < releaseDelay {
		return v.Revert(common.Validationf("release delay longer than the post-cliff period"))
	}
	if quantity.Cmp(config.CurrentTokenPool) > 0 {
		return v.Revert(common.Validationf("quantity exceeds pool balance"))
	}

	tge := new(big.Int).Mul(quantity.Value, new(big.Int).SetUint64(config.TGERate))
	tge.Div(tge, big.NewInt(100))
	tgeAmount := types.NewAmountFromBig(tge, symbol)

	cliffStart := startDate + config.CliffPeriod
	lastClaim := uint64(0)
	if cliffStart >= releaseDelay {
		lastClaim = cliffStart - releaseDelay
	}

	grant := Grant{
		Pool:          pool,
		User:          user,
		Quantity:      quantity.Clone(),
		TokensClaimed: types.NewAmount(0, symbol),
		TGEAmount:     tgeAmount,
		StartDate:     startDate,
		VestingLength: config.ReleasePeriod,
		CliffPeriod:   config.CliffPeriod,
		EndDate:       startDate + config.ReleasePeriod,
		LastClaim:     lastClaim,
		ReleaseDelay:  releaseDelay,
		Unclaimed:     tgeAmount.Clone(),
	}
	if err := v.grants.Put(user, grant); err != nil {
		return err
	}
	config.UsersVested++
	return v.configs.Put(pool, config)
}

// Claim pays out everything claimable right now: carried-over value plus the
// steps elapsed since the last claim. The final claim at or after the end
// date pays the full remainder and removes the grant.
func (v *Vesting) Claim(user ethcommon.Address) error {
	if v.Ctx.From != user && !v.CallFromSelf() {
		return v.Revert(common.Authorizationf("missing authority of user"))
	}
	grant, config, err := v.grantWithConfig(user)
	if err != nil {
		return v.Revert(err)
	}
	if config.PauseClaim {
		return v.Revert(common.Statef("claims are paused for pool %s", grant.Pool))
	}

	total, closed, err := v.settleAmount(&grant, v.Ctx.Timestamp)
	if err != nil {
		return v.Revert(err)
	}
	if !total.Positive() {
		return v.Revert(common.Statef("nothing to claim"))
	}

	if err := v.payOut(&config, grant.User, total); err != nil {
		return v.Revert(err)
	}

	if closed {
		if err := v.grants.Delete(user); err != nil {
			return err
		}
		config.UsersVested--
	} else {
		claimed, err := grant.TokensClaimed.Add(total)
		if err != nil {
			return err
		}
		grant.TokensClaimed = claimed
		grant.Unclaimed = types.NewAmount(0, total.Symbol)
		if err := v.grants.Put(user, grant); err != nil {
			return err
		}
	}
	if err := v.configs.Put(grant.Pool, config); err != nil {
		return err
	}

	v.EmitEvent("Claim", &ClaimEvent{Pool: grant.Pool, User: grant.User, Quantity: total, Closed: closed})
	return nil
}

// Cancel settles what the user has earned so far and removes the grant; the
// unvested remainder stays in the pool.
func (v *Vesting) Cancel(user ethcommon.Address) error {
	if !v.CallFromSelf() {
		return v.Revert(common.Authorizationf("missing authority of vesting contract"))
	}
	grant, config, err := v.grantWithConfig(user)
	if err != nil {
		return v.Revert(err)
	}
	if config.PauseClaim {
		return v.Revert(common.Statef("claims are paused for pool %s", grant.Pool))
	}

	total, _, err := v.settleAmount(&grant, v.Ctx.Timestamp)
	if err != nil {
		return v.Revert(err)
	}
	if total.Positive() {
		if err := v.payOut(&config, grant.User, total); err != nil {
			return v.Revert(err)
		}
	}

	if err := v.grants.Delete(user); err != nil {
		return err
	}
	config.UsersVested--
	if err := v.configs.Put(grant.Pool, config); err != nil {
		return err
	}

	v.EmitEvent("Cancel", &CancelEvent{Pool: grant.Pool, User: grant.User, Settled: total})
	return nil
}

// Clear removes a pool config, a grant, or both, without settling anything.
// Pass PoolNone or the zero address to skip the respective removal. A grant
// whose pool was cleared can no longer claim.
func (v *Vesting) Clear(pool string, user ethcommon.Address) error {
	if !v.CallFromSelf() {
		return v.Revert(common.Authorizationf("missing authority of vesting contract"))
	}
	if pool != PoolNone {
		if !v.configs.Has(pool) {
			return v.Revert(common.NotFoundf("pool config does not exist"))
		}
		if err := v.configs.Delete(pool); err != nil {
			return err
		}
	}
	if user != (ethcommon.Address{}) {
		exist, grant, err := v.grants.Get(user)
		if err != nil {
			return err
		}
		if !exist {
			return v.Revert(common.NotFoundf("no grant found for user"))
		}
		if err := v.grants.Delete(user); err != nil {
			return err
		}
		if configExist, config, err := v.configs.Get(grant.Pool); err == nil && configExist {
			config.UsersVested--
			if err := v.configs.Put(grant.Pool, config); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Vesting) TokenSymbol() (types.Symbol, error) {
	return v.tokenSymbol.MustGet()
}

func (v *Vesting) Pool(pool string) (PoolConfig, error) {
	exist, config, err := v.configs.Get(pool)
	if err != nil {
		return PoolConfig{}, err
	}
	if !exist {
		return PoolConfig{}, common.NotFoundf("pool config does not exist")
	}
	return config, nil
}

func (v *Vesting) GrantOf(user ethcommon.Address) (Grant, error) {
	exist, grant, err := v.grants.Get(user)
	if err != nil {
		return Grant{}, err
	}
	if !exist {
		return Grant{}, common.NotFoundf("no grant found for user")
	}
	return grant, nil
}

// ClaimableAmount reports what a Claim at the current block time would pay.
func (v *Vesting) ClaimableAmount(user ethcommon.Address) (types.Amount, error) {
	grant, err := v.GrantOf(user)
	if err != nil {
		return types.Amount{}, err
	}
	total, _, err := v.settleAmount(&grant, v.Ctx.Timestamp)
	if err != nil {
		return types.Amount{}, err
	}
	return total, nil
}

func (v *Vesting) grantWithConfig(user ethcommon.Address) (Grant, PoolConfig, error) {
	exist, grant, err := v.grants.Get(user)
	if err != nil {
		return Grant{}, PoolConfig{}, err
	}
	if !exist {
		return Grant{}, PoolConfig{}, common.NotFoundf("no grant found for user")
	}
	configExist, config, err := v.configs.Get(grant.Pool)
	if err != nil {
		return Grant{}, PoolConfig{}, err
	}
	if !configExist {
		return Grant{}, PoolConfig{}, common.NotFoundf("pool config does not exist")
	}
	return grant, config, nil
}

// settleAmount computes the claimable total at now and advances the grant's
// last-claim boundary. closed reports that the schedule has fully run out.
func (v *Vesting) settleAmount(grant *Grant, now uint64) (types.Amount, bool, error) {
	if now >= grant.EndDate {
		remaining, err := grant.Quantity.Sub(grant.TokensClaimed)
		if err != nil {
			return types.Amount{}, false, err
		}
		return remaining, true, nil
	}
	accrued := grant.accrue(now)
	total, err := grant.Unclaimed.Add(types.NewAmountFromBig(accrued, grant.Unclaimed.Symbol))
	if err != nil {
		return types.Amount{}, false, err
	}
	return total, false, nil
}

// payOut debits the pool and moves tokens from the contract's own balance.
// The token balance is verified before any bookkeeping so a short balance
// aborts cleanly.
func (v *Vesting) payOut(config *PoolConfig, user ethcommon.Address, total types.Amount) error {
	newPool, err := config.CurrentTokenPool.Sub(total)
	if err != nil {
		return common.Statef("insufficient pool balance")
	}

	tokenContract := token.TokenBuildConfig.Build(v.CrossCallSystemContractContext())
	balance, err := tokenContract.BalanceOf(v.Address, total.Symbol.Code)
	if err != nil {
		return err
	}
	if balance.Cmp(total) < 0 {
		return common.Statef("vesting contract balance too low, please contact admin")
	}

	config.CurrentTokenPool = newPool
	return tokenContract.Transfer(v.Address, user, total, "vesting claim")
}

// accrue returns the value vested between the last claim and now, excluding
// the TGE slice, and advances LastClaim to the latest elapsed step boundary.
// Vested value is always a whole-step fraction of the post-cliff quantity so
// repeated claims sum exactly to it, with no rounding drift.
func (g *Grant) accrue(now uint64) *big.Int {
	cliffStart := g.StartDate + g.CliffPeriod
	if now < cliffStart || g.ReleaseDelay == 0 {
		return big.NewInt(0)
	}
	totalSteps := (g.VestingLength - g.CliffPeriod) / g.ReleaseDelay
	if totalSteps == 0 {
		return big.NewInt(0)
	}
	elapsed := (now-cliffStart)/g.ReleaseDelay + 1
	if elapsed > totalSteps {
		elapsed = totalSteps
	}
	var done uint64
	if g.LastClaim+g.ReleaseDelay > cliffStart {
		done = (g.LastClaim + g.ReleaseDelay - cliffStart) / g.ReleaseDelay
	}
	if done >= elapsed {
		return big.NewInt(0)
	}

	postCliff := new(big.Int).Sub(g.Quantity.Value, g.TGEAmount.Value)
	steps := new(big.Int).SetUint64(totalSteps)
	vestedNow := new(big.Int).Mul(postCliff, new(big.Int).SetUint64(elapsed))
	vestedNow.Div(vestedNow, steps)
	vestedDone := new(big.Int).Mul(postCliff, new(big.Int).SetUint64(done))
	vestedDone.Div(vestedDone, steps)

	g.LastClaim = cliffStart + (elapsed-1)*g.ReleaseDelay
	return vestedNow.Sub(vestedNow, vestedDone)
}
