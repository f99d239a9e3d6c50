package genesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apocnet/apoc-ledger/internal/ledger"
	"github.com/apocnet/apoc-ledger/pkg/repo"
)

func TestInitialize(t *testing.T) {
	lg := ledger.NewMemory()
	genesis := repo.DefaultGenesisConfig()

	assert.False(t, IsInitialized(lg))
	err := Initialize(genesis, lg)
	assert.Nil(t, err)
	assert.True(t, IsInitialized(lg))

	stored, err := StoredGenesisConfig(lg)
	assert.Nil(t, err)
	assert.Equal(t, genesis.ChainID, stored.ChainID)
	assert.Equal(t, genesis.Token.Symbol, stored.Token.Symbol)

	err = Initialize(genesis, lg)
	assert.ErrorContains(t, err, "already initialized")
}

func TestStoredGenesisConfigBeforeInit(t *testing.T) {
	lg := ledger.NewMemory()
	_, err := StoredGenesisConfig(lg)
	assert.ErrorContains(t, err, "not initialized")
}
