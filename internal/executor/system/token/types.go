package token

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/apocnet/apoc-ledger/pkg/repo"
	"github.com/apocnet/apoc-ledger/pkg/types"
)

const (
	nameStorageKey          = "tokenName"
	symbolStorageKey        = "tokenSymbol"
	statsStorageKey         = "supplyStats"
	balancesStorageKey      = "balances"
	transferBlockStorageKey = "transferBlocked"
	capabilitiesStorageKey  = "capabilities"

	maxMemoBytes = 256
)

// Capability is a capability-set membership bit. Privileged accounts hold
// capabilities instead of being hardcoded identities.
type Capability uint8

const (
	// CapabilityIssueTarget: account may be named as issue destination and
	// may authorize issue calls alongside the issuer.
	CapabilityIssueTarget Capability = 1 << iota
	// CapabilityBypassTransferBlock: account may send transfers while the
	// transfer block flag is raised.
	CapabilityBypassTransferBlock
	// CapabilityToggleTransferBlock: account may raise/lower the transfer
	// block flag.
	CapabilityToggleTransferBlock
)

func CapabilityFromName(name string) (Capability, error) {
	switch name {
	case repo.CapabilityNameIssueTarget:
		return CapabilityIssueTarget, nil
	case repo.CapabilityNameBypassTransferBlock:
		return CapabilityBypassTransferBlock, nil
	case repo.CapabilityNameToggleTransferBlock:
		return CapabilityToggleTransferBlock, nil
	default:
		return 0, errors.Errorf("unknown capability name: %s", name)
	}
}

// SupplyStat tracks one symbol's issuance bounds. Created once per symbol,
// mutated by issue/retire, never deleted.
type SupplyStat struct {
	Issuer        ethcommon.Address
	MaxSupply     types.Amount
	CurrentSupply types.Amount
}

type balanceKey struct {
	Owner ethcommon.Address
	Code  string
}

func (k balanceKey) String() string {
	return k.Owner.String() + "_" + k.Code
}

// TransferEvent notifies both parties of a completed transfer; it carries no
// balance change of its own.
type TransferEvent struct {
	From     ethcommon.Address
	To       ethcommon.Address
	Quantity types.Amount
	Memo     string
}

type TransferBlockEvent struct {
	Blocked bool
	By      ethcommon.Address
}
