package vesting

import (
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/apocnet/apoc-ledger/pkg/types"
)

const (
	configsStorageKey = "poolConfigs"
	grantsStorageKey  = "grants"
	symbolStorageKey  = "vestingSymbol"

	// PoolNone is the sentinel pool name for Clear calls that target only a
	// grant; no real pool may use it.
	PoolNone = "none"

	maxTGERate = 100
)

// PoolConfig describes one vesting pool. TokenPool is the total allocation;
// CurrentTokenPool shrinks as grants are settled.
type PoolConfig struct {
	Pool             string
	TokenPool        types.Amount
	CurrentTokenPool types.Amount
	// TGERate is the percentage of each grant unlocked immediately, 0-100.
	TGERate       uint64
	ReleasePeriod uint64
	CliffPeriod   uint64
	UsersVested   uint64
	PauseClaim    bool
}

// Grant is one user's vesting schedule. The schedule parameters are copied
// from the pool config at creation time so later config changes never move
// an existing grant.
type Grant struct {
	Pool          string
	User          ethcommon.Address
	Quantity      types.Amount
	TokensClaimed types.Amount
	// TGEAmount is the slice of Quantity unlocked at start, excluded from
	// step accrual.
	TGEAmount     types.Amount
	StartDate     uint64
	VestingLength uint64
	CliffPeriod   uint64
	EndDate       uint64
	// LastClaim sits on a step boundary: cliff start plus a whole number of
	// release delays, minus one delay before the first claim.
	LastClaim    uint64
	ReleaseDelay uint64
	// Unclaimed is carried-over value claimable regardless of elapsed steps,
	// seeded with the TGE slice.
	Unclaimed types.Amount
}

type ClaimEvent struct {
	Pool     string
	User     ethcommon.Address
	Quantity types.Amount
	// Closed marks the final claim that removed the grant.
	Closed bool
}

type CancelEvent struct {
	Pool    string
	User    ethcommon.Address
	Settled types.Amount
}
