package repo

const (
	AppName = "apoc-ledger"

	CfgFileName        = "config.toml"
	genesisCfgFileName = "genesis.toml"

	envPrefix = "APOC"
)

// Default well-known accounts used when no genesis file is present. The
// issuer owns the token supply; the investor-distribution and staking
// accounts hold the privileged capabilities of the token contract.
const (
	DefaultIssuerAddr   = "0xc7F999b83Af6DF9e67d0a37Ee7e900bF38b3D013"
	DefaultInvestorAddr = "0x79a1215469FaB6f9c63c1816b45183AD3624bE34"
	DefaultStakingAddr  = "0x97c8B516D19edBf575D72a172Af7F418BE498C37"
)

const (
	DefaultTokenName     = "Apocalypseium"
	DefaultTokenSymbol   = "APOC"
	DefaultTokenDecimals = uint8(4)

	// 1 billion tokens at 4 decimals
	DefaultTokenMaxSupply = "10000000000000"
)

// Capability names accepted in genesis config; must match the token
// contract's capability set.
const (
	CapabilityNameIssueTarget         = "issue_target"
	CapabilityNameBypassTransferBlock = "bypass_transfer_block"
	CapabilityNameToggleTransferBlock = "toggle_transfer_block"
)
