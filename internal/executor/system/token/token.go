package token

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/apocnet/apoc-ledger/internal/executor/system/common"
	"github.com/apocnet/apoc-ledger/pkg/repo"
	"github.com/apocnet/apoc-ledger/pkg/types"
)

var TokenBuildConfig = &common.SystemContractBuildConfig[*Token]{
	Name:    "token_ledger",
	Address: common.TokenContractAddr,
	Constructor: func(systemContractBase common.SystemContractBase) *Token {
		return &Token{
			SystemContractBase: systemContractBase,
		}
	},
}

// Token is the fungible token ledger contract: per-symbol supply stats,
// per-(owner, symbol) balances, the transfer block flag and the privileged
// capability table. Every action checks all preconditions before mutating
// anything.
type Token struct {
	common.SystemContractBase

	tokenSymbol     *common.VMSlot[types.Symbol]
	stats           *common.VMMap[string, SupplyStat]
	balances        *common.VMMap[balanceKey, types.Amount]
	transferBlocked *common.VMSlot[bool]
	capabilities    *common.VMMap[ethcommon.Address, Capability]
}

func (t *Token) SetContext(ctx *common.VMContext) {
	t.SystemContractBase.SetContext(ctx)

	t.tokenSymbol = common.NewVMSlot[types.Symbol](t.StateAccount, symbolStorageKey)
	t.stats = common.NewVMMap[string, SupplyStat](t.StateAccount, statsStorageKey, func(key string) string {
		return key
	})
	t.balances = common.NewVMMap[balanceKey, types.Amount](t.StateAccount, balancesStorageKey, func(key balanceKey) string {
		return key.String()
	})
	t.transferBlocked = common.NewVMSlot[bool](t.StateAccount, transferBlockStorageKey)
	t.capabilities = common.NewVMMap[ethcommon.Address, Capability](t.StateAccount, capabilitiesStorageKey, func(key ethcommon.Address) string {
		return key.String()
	})
}

func (t *Token) GenesisInit(genesis *repo.GenesisConfig) error {
	tokenCfg := genesis.Token
	symbol := types.NewSymbol(tokenCfg.Symbol, tokenCfg.Decimals)
	if !symbol.Valid() {
		return common.Validationf("invalid symbol name")
	}
	maxSupply, ok := new(big.Int).SetString(tokenCfg.MaxSupply, 10)
	if !ok {
		return common.Validationf("invalid max supply: %s", tokenCfg.MaxSupply)
	}

	t.StateAccount.SetState([]byte(nameStorageKey), []byte(tokenCfg.Name))
	if err := t.tokenSymbol.Put(symbol); err != nil {
		return err
	}

	issuer := ethcommon.HexToAddress(tokenCfg.Issuer)
	t.Ctx.StateLedger.GetOrCreateAccount(issuer)
	if err := t.Create(issuer, types.NewAmountFromBig(maxSupply, symbol)); err != nil {
		return err
	}

	// defined default: transfers start unblocked
	if err := t.transferBlocked.Put(false); err != nil {
		return err
	}

	for _, capAccount := range genesis.CapabilityAccounts {
		addr := ethcommon.HexToAddress(capAccount.Address)
		t.Ctx.StateLedger.GetOrCreateAccount(addr)
		var caps Capability
		for _, name := range capAccount.Capabilities {
			c, err := CapabilityFromName(name)
			if err != nil {
				return err
			}
			caps |= c
		}
		if err := t.capabilities.Put(addr, caps); err != nil {
			return err
		}
	}

	// the vesting contract settles claims from its own balance; claims must
	// keep working while ordinary transfers are blocked
	vestingAddr := ethcommon.HexToAddress(common.VestingContractAddr)
	t.Ctx.StateLedger.GetOrCreateAccount(vestingAddr)
	if err := t.capabilities.Put(vestingAddr, CapabilityBypassTransferBlock); err != nil {
		return err
	}

	for _, admin := range genesis.Admins {
		account := t.Ctx.StateLedger.GetOrCreateAccount(ethcommon.HexToAddress(admin.Address))
		if admin.Balance != "" {
			balance, ok := new(big.Int).SetString(admin.Balance, 10)
			if !ok {
				return common.Validationf("invalid balance: %s", admin.Balance)
			}
			account.SetBalance(balance)
		}
	}
	return nil
}

// Create registers a new symbol. Only the contract itself may create.
func (t *Token) Create(issuer ethcommon.Address, maxSupply types.Amount) error {
	if !t.CallFromSelf() {
		return t.Revert(common.Authorizationf("missing authority of token contract"))
	}
	if !maxSupply.Valid() || !maxSupply.Symbol.Valid() {
		return t.Revert(common.Validationf("invalid symbol name"))
	}
	if !maxSupply.Positive() {
		return t.Revert(common.Validationf("max-supply must be positive"))
	}
	if t.stats.Has(maxSupply.Symbol.Code) {
		return t.Revert(common.AlreadyExistsf("token with symbol already exists"))
	}

	return t.stats.Put(maxSupply.Symbol.Code, SupplyStat{
		Issuer:        issuer,
		MaxSupply:     maxSupply.Clone(),
		CurrentSupply: types.NewAmount(0, maxSupply.Symbol),
	})
}

// Issue mints quantity into circulation. The destination must be the issuer
// or an issue-target capability holder, the caller likewise; the credited
// balance is the authenticated caller's.
func (t *Token) Issue(to ethcommon.Address, quantity types.Amount, memo string) error {
	if !quantity.Valid() {
		return t.Revert(common.Validationf("invalid quantity"))
	}
	if len(memo) > maxMemoBytes {
		return t.Revert(common.Validationf("memo has more than 256 bytes"))
	}

	stat, err := t.getStat(quantity.Symbol.Code)
	if err != nil {
		return t.Revert(common.NotFoundf("token with symbol does not exist, create token before issue"))
	}
	if to != stat.Issuer && !t.hasCapability(to, CapabilityIssueTarget) {
		return t.Revert(common.Validationf("tokens can only be issued to issuer or privileged accounts"))
	}

	caller := t.Ctx.From
	if caller != stat.Issuer && !t.hasCapability(caller, CapabilityIssueTarget) {
		return t.Revert(common.Authorizationf("no authority"))
	}

	if !quantity.Positive() {
		return t.Revert(common.Validationf("must issue positive quantity"))
	}
	if !quantity.Symbol.Equal(stat.CurrentSupply.Symbol) {
		return t.Revert(common.Validationf("symbol precision mismatch"))
	}

	newSupply, err := stat.CurrentSupply.Add(quantity)
	if err != nil {
		return t.Revert(err)
	}
	if newSupply.Cmp(stat.MaxSupply) > 0 {
		return t.Revert(common.Validationf("quantity exceeds available supply"))
	}

	stat.CurrentSupply = newSupply
	if err := t.stats.Put(quantity.Symbol.Code, stat); err != nil {
		return err
	}
	return t.addBalance(caller, quantity)
}

// Retire burns quantity from the issuer's balance and current supply.
func (t *Token) Retire(quantity types.Amount, memo string) error {
	if !quantity.Valid() {
		return t.Revert(common.Validationf("invalid quantity"))
	}
	if len(memo) > maxMemoBytes {
		return t.Revert(common.Validationf("memo has more than 256 bytes"))
	}

	stat, err := t.getStat(quantity.Symbol.Code)
	if err != nil {
		return t.Revert(err)
	}
	if t.Ctx.From != stat.Issuer {
		return t.Revert(common.Authorizationf("missing authority of issuer"))
	}
	if !quantity.Positive() {
		return t.Revert(common.Validationf("must retire positive quantity"))
	}
	if !quantity.Symbol.Equal(stat.CurrentSupply.Symbol) {
		return t.Revert(common.Validationf("symbol precision mismatch"))
	}

	// both debits must be possible before either happens
	if err := t.checkBalance(stat.Issuer, quantity); err != nil {
		return t.Revert(err)
	}
	newSupply, err := stat.CurrentSupply.Sub(quantity)
	if err != nil {
		return t.Revert(common.Validationf("quantity exceeds current supply"))
	}

	stat.CurrentSupply = newSupply
	if err := t.stats.Put(quantity.Symbol.Code, stat); err != nil {
		return err
	}
	return t.subBalance(stat.Issuer, quantity)
}

// Transfer moves quantity between accounts. When the transfer block flag is
// raised, only bypass-capability holders may send.
func (t *Token) Transfer(from, to ethcommon.Address, quantity types.Amount, memo string) error {
	if from == to {
		return t.Revert(common.Validationf("cannot transfer to self"))
	}

	exist, blocked, err := t.transferBlocked.Get()
	if err != nil {
		return err
	}
	if !exist {
		return t.Revert(common.Statef("no transfer status found, please contact admin"))
	}
	if blocked && !t.hasCapability(from, CapabilityBypassTransferBlock) {
		return t.Revert(common.Statef("transfer not allowed"))
	}

	if t.Ctx.From != from {
		return t.Revert(common.Authorizationf("missing authority of sender"))
	}
	if !t.Ctx.StateLedger.HasAccount(to) {
		return t.Revert(common.Validationf("to account does not exist"))
	}

	stat, err := t.getStat(quantity.Symbol.Code)
	if err != nil {
		return t.Revert(err)
	}
	if !quantity.Valid() || !quantity.Positive() {
		return t.Revert(common.Validationf("must transfer positive quantity"))
	}
	if !quantity.Symbol.Equal(stat.CurrentSupply.Symbol) {
		return t.Revert(common.Validationf("symbol precision mismatch"))
	}
	if len(memo) > maxMemoBytes {
		return t.Revert(common.Validationf("memo has more than 256 bytes"))
	}

	if err := t.checkBalance(from, quantity); err != nil {
		return t.Revert(err)
	}

	if err := t.subBalance(from, quantity); err != nil {
		return err
	}
	if err := t.addBalance(to, quantity); err != nil {
		return err
	}

	// pass-through notification for both parties
	t.EmitEvent("Transfer", &TransferEvent{From: from, To: to, Quantity: quantity, Memo: memo})
	return nil
}

// SetTransferBlock upserts the transfer block flag.
func (t *Token) SetTransferBlock(blocked bool) error {
	if !t.CallFromSelf() && !t.hasCapability(t.Ctx.From, CapabilityToggleTransferBlock) {
		return t.Revert(common.Authorizationf("no authority"))
	}
	if err := t.transferBlocked.Put(blocked); err != nil {
		return err
	}
	t.EmitEvent("TransferBlock", &TransferBlockEvent{Blocked: blocked, By: t.Ctx.From})
	return nil
}

// Open creates a zero balance row so a future credit needs no row creation.
func (t *Token) Open(owner ethcommon.Address, symbol types.Symbol, payer ethcommon.Address) error {
	if t.Ctx.From != payer {
		return t.Revert(common.Authorizationf("missing authority of payer"))
	}
	if !t.Ctx.StateLedger.HasAccount(owner) {
		return t.Revert(common.Validationf("owner account does not exist"))
	}

	stat, err := t.getStat(symbol.Code)
	if err != nil {
		return t.Revert(err)
	}
	if !stat.CurrentSupply.Symbol.Equal(symbol) {
		return t.Revert(common.Validationf("symbol precision mismatch"))
	}

	key := balanceKey{Owner: owner, Code: symbol.Code}
	if t.balances.Has(key) {
		return nil
	}
	return t.balances.Put(key, types.NewAmount(0, symbol))
}

// Close removes a zero balance row.
func (t *Token) Close(owner ethcommon.Address, symbol types.Symbol) error {
	if t.Ctx.From != owner {
		return t.Revert(common.Authorizationf("missing authority of owner"))
	}
	key := balanceKey{Owner: owner, Code: symbol.Code}
	exist, balance, err := t.balances.Get(key)
	if err != nil {
		return err
	}
	if !exist {
		return t.Revert(common.Statef("balance row already deleted or never existed"))
	}
	if !balance.Zero() {
		return t.Revert(common.Statef("cannot close because the balance is not zero"))
	}
	return t.balances.Delete(key)
}

// GrantCapability adds capability bits to an account's set.
func (t *Token) GrantCapability(addr ethcommon.Address, capability Capability) error {
	if !t.CallFromSelf() {
		return t.Revert(common.Authorizationf("missing authority of token contract"))
	}
	_, caps, err := t.capabilities.Get(addr)
	if err != nil {
		return err
	}
	return t.capabilities.Put(addr, caps|capability)
}

// RevokeCapability clears capability bits from an account's set.
func (t *Token) RevokeCapability(addr ethcommon.Address, capability Capability) error {
	if !t.CallFromSelf() {
		return t.Revert(common.Authorizationf("missing authority of token contract"))
	}
	exist, caps, err := t.capabilities.Get(addr)
	if err != nil {
		return err
	}
	if !exist {
		return t.Revert(common.NotFoundf("account holds no capabilities"))
	}
	return t.capabilities.Put(addr, caps&^capability)
}

func (t *Token) Name() string {
	ok, name := t.StateAccount.GetState([]byte(nameStorageKey))
	if !ok {
		return ""
	}
	return string(name)
}

func (t *Token) TokenSymbol() (types.Symbol, error) {
	return t.tokenSymbol.MustGet()
}

func (t *Token) Decimals() uint8 {
	symbol, err := t.tokenSymbol.MustGet()
	if err != nil {
		return 0
	}
	return symbol.Decimals
}

func (t *Token) TotalSupply(code string) (types.Amount, error) {
	stat, err := t.getStat(code)
	if err != nil {
		return types.Amount{}, err
	}
	return stat.CurrentSupply, nil
}

func (t *Token) MaxSupplyOf(code string) (types.Amount, error) {
	stat, err := t.getStat(code)
	if err != nil {
		return types.Amount{}, err
	}
	return stat.MaxSupply, nil
}

// BalanceOf returns the owner's balance, or a zero amount if no row exists.
func (t *Token) BalanceOf(owner ethcommon.Address, code string) (types.Amount, error) {
	stat, err := t.getStat(code)
	if err != nil {
		return types.Amount{}, err
	}
	exist, balance, err := t.balances.Get(balanceKey{Owner: owner, Code: code})
	if err != nil {
		return types.Amount{}, err
	}
	if !exist {
		return types.NewAmount(0, stat.CurrentSupply.Symbol), nil
	}
	return balance, nil
}

func (t *Token) Blocked() (bool, error) {
	return t.transferBlocked.MustGet()
}

func (t *Token) HasCapability(addr ethcommon.Address, capability Capability) bool {
	return t.hasCapability(addr, capability)
}

func (t *Token) getStat(code string) (SupplyStat, error) {
	exist, stat, err := t.stats.Get(code)
	if err != nil {
		return SupplyStat{}, err
	}
	if !exist {
		return SupplyStat{}, common.NotFoundf("token with symbol does not exist")
	}
	return stat, nil
}

func (t *Token) hasCapability(addr ethcommon.Address, capability Capability) bool {
	exist, caps, err := t.capabilities.Get(addr)
	return err == nil && exist && caps&capability != 0
}

func (t *Token) checkBalance(owner ethcommon.Address, value types.Amount) error {
	exist, balance, err := t.balances.Get(balanceKey{Owner: owner, Code: value.Symbol.Code})
	if err != nil {
		return err
	}
	if !exist {
		return common.NotFoundf("no balance object found")
	}
	if balance.Cmp(value) < 0 {
		return common.Statef("overdrawn balance")
	}
	return nil
}

func (t *Token) subBalance(owner ethcommon.Address, value types.Amount) error {
	key := balanceKey{Owner: owner, Code: value.Symbol.Code}
	exist, balance, err := t.balances.Get(key)
	if err != nil {
		return err
	}
	if !exist {
		return common.NotFoundf("no balance object found")
	}
	newBalance, err := balance.Sub(value)
	if err != nil {
		return common.Statef("overdrawn balance")
	}
	return t.balances.Put(key, newBalance)
}

func (t *Token) addBalance(owner ethcommon.Address, value types.Amount) error {
	key := balanceKey{Owner: owner, Code: value.Symbol.Code}
	exist, balance, err := t.balances.Get(key)
	if err != nil {
		return err
	}
	if !exist {
		return t.balances.Put(key, value.Clone())
	}
	newBalance, err := balance.Add(value)
	if err != nil {
		return err
	}
	return t.balances.Put(key, newBalance)
}
