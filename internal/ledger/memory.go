package ledger

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var _ StateLedger = (*MemStateLedger)(nil)

// MemStateLedger is an in-memory StateLedger used for genesis bootstrap and
// tests. Snapshots are whole-state copies; the working sets here are tiny.
type MemStateLedger struct {
	accounts  map[ethcommon.Address]*memAccount
	logs      []*Log
	snapshots []*memSnapshot
}

type memSnapshot struct {
	accounts map[ethcommon.Address]*memAccount
	logLen   int
}

func NewMemory() *MemStateLedger {
	return &MemStateLedger{
		accounts: make(map[ethcommon.Address]*memAccount),
	}
}

func (l *MemStateLedger) GetAccount(addr ethcommon.Address) IAccount {
	acc, ok := l.accounts[addr]
	if !ok {
		return nil
	}
	return acc
}

func (l *MemStateLedger) GetOrCreateAccount(addr ethcommon.Address) IAccount {
	acc, ok := l.accounts[addr]
	if !ok {
		acc = newMemAccount(addr)
		l.accounts[addr] = acc
	}
	return acc
}

func (l *MemStateLedger) HasAccount(addr ethcommon.Address) bool {
	_, ok := l.accounts[addr]
	return ok
}

func (l *MemStateLedger) AddLog(log *Log) {
	l.logs = append(l.logs, log)
}

func (l *MemStateLedger) Logs() []*Log {
	return l.logs
}

func (l *MemStateLedger) Snapshot() int {
	cp := make(map[ethcommon.Address]*memAccount, len(l.accounts))
	for addr, acc := range l.accounts {
		cp[addr] = acc.clone()
	}
	l.snapshots = append(l.snapshots, &memSnapshot{accounts: cp, logLen: len(l.logs)})
	return len(l.snapshots) - 1
}

func (l *MemStateLedger) RevertToSnapshot(snapshot int) {
	if snapshot < 0 || snapshot >= len(l.snapshots) {
		panic("revert to unknown snapshot")
	}
	s := l.snapshots[snapshot]
	l.accounts = s.accounts
	l.logs = l.logs[:s.logLen]
	l.snapshots = l.snapshots[:snapshot]
}

func (l *MemStateLedger) Finalise() {
	l.snapshots = nil
}

var _ IAccount = (*memAccount)(nil)

type memAccount struct {
	address ethcommon.Address
	balance *big.Int
	nonce   uint64
	state   map[string][]byte
}

func newMemAccount(addr ethcommon.Address) *memAccount {
	return &memAccount{
		address: addr,
		balance: new(big.Int),
		state:   make(map[string][]byte),
	}
}

func (a *memAccount) clone() *memAccount {
	cp := newMemAccount(a.address)
	cp.balance = new(big.Int).Set(a.balance)
	cp.nonce = a.nonce
	for k, v := range a.state {
		data := make([]byte, len(v))
		copy(data, v)
		cp.state[k] = data
	}
	return cp
}

func (a *memAccount) GetAddress() ethcommon.Address {
	return a.address
}

func (a *memAccount) GetState(key []byte) (bool, []byte) {
	v, ok := a.state[string(key)]
	return ok, v
}

func (a *memAccount) SetState(key []byte, value []byte) {
	a.state[string(key)] = value
}

func (a *memAccount) GetBalance() *big.Int {
	return new(big.Int).Set(a.balance)
}

func (a *memAccount) SetBalance(balance *big.Int) {
	a.balance = new(big.Int).Set(balance)
}

func (a *memAccount) AddBalance(amount *big.Int) {
	a.balance = new(big.Int).Add(a.balance, amount)
}

func (a *memAccount) SubBalance(amount *big.Int) {
	a.balance = new(big.Int).Sub(a.balance, amount)
}

func (a *memAccount) GetNonce() uint64 {
	return a.nonce
}

func (a *memAccount) SetNonce(nonce uint64) {
	a.nonce = nonce
}
