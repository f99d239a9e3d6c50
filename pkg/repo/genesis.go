package repo

type GenesisConfig struct {
	ChainID            uint64               `mapstructure:"chainid" toml:"chainid"`
	Admins             []*Admin             `mapstructure:"admins" toml:"admins"`
	Token              *TokenGenesis        `mapstructure:"token" toml:"token"`
	CapabilityAccounts []*CapabilityAccount `mapstructure:"capability_accounts" toml:"capability_accounts"`
	Vesting            *VestingGenesis      `mapstructure:"vesting" toml:"vesting"`
}

type Admin struct {
	Address string `mapstructure:"address" toml:"address"`
	Balance string `mapstructure:"balance" toml:"balance"`
	Name    string `mapstructure:"name" toml:"name"`
}

type TokenGenesis struct {
	Name      string `mapstructure:"name" toml:"name"`
	Symbol    string `mapstructure:"symbol" toml:"symbol"`
	Decimals  uint8  `mapstructure:"decimals" toml:"decimals"`
	MaxSupply string `mapstructure:"max_supply" toml:"max_supply"`
	Issuer    string `mapstructure:"issuer" toml:"issuer"`
}

// CapabilityAccount grants named token-contract capabilities to an account at
// genesis. Replaces the reference design's hardcoded privileged accounts.
type CapabilityAccount struct {
	Address      string   `mapstructure:"address" toml:"address"`
	Capabilities []string `mapstructure:"capabilities" toml:"capabilities"`
}

type VestingGenesis struct {
	// TokenSymbol/TokenDecimals pin the symbol the vesting contract settles
	// claims in; must match an issued token symbol.
	TokenSymbol   string `mapstructure:"token_symbol" toml:"token_symbol"`
	TokenDecimals uint8  `mapstructure:"token_decimals" toml:"token_decimals"`
}

func DefaultGenesisConfig() *GenesisConfig {
	return &GenesisConfig{
		ChainID: 1356,
		Admins: []*Admin{
			{Address: DefaultIssuerAddr, Balance: "0", Name: "issuer"},
		},
		Token: &TokenGenesis{
			Name:      DefaultTokenName,
			Symbol:    DefaultTokenSymbol,
			Decimals:  DefaultTokenDecimals,
			MaxSupply: DefaultTokenMaxSupply,
			Issuer:    DefaultIssuerAddr,
		},
		CapabilityAccounts: []*CapabilityAccount{
			{
				Address: DefaultInvestorAddr,
				Capabilities: []string{
					CapabilityNameIssueTarget,
					CapabilityNameBypassTransferBlock,
					CapabilityNameToggleTransferBlock,
				},
			},
			{
				Address: DefaultStakingAddr,
				Capabilities: []string{
					CapabilityNameIssueTarget,
					CapabilityNameBypassTransferBlock,
				},
			},
		},
		Vesting: &VestingGenesis{
			TokenSymbol:   DefaultTokenSymbol,
			TokenDecimals: DefaultTokenDecimals,
		},
	}
}
