// Package catalog serves the hard-coded market data browsed from the
// dashboard: IP-NFTs, staking vaults, lending pools and governance proposals.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var fixture []byte

// Money amounts are decimal; rates and ratios are plain fractions.
type NFT struct {
	ID           string          `yaml:"id"`
	Title        string          `yaml:"title"`
	PatentNumber string          `yaml:"patentNumber"`
	Category     string          `yaml:"category"`
	Owner        string          `yaml:"owner"`
	Valuation    decimal.Decimal `yaml:"valuation"`
	Royalty      float64         `yaml:"royalty"`
}

type Vault struct {
	ID     string          `yaml:"id"`
	Name   string          `yaml:"name"`
	Asset  string          `yaml:"asset"`
	APY    float64         `yaml:"apy"`
	TVL    decimal.Decimal `yaml:"tvl"`
	NFTIDs []string        `yaml:"nfts"`
}

type Pool struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Asset       string  `yaml:"asset"`
	SupplyAPY   float64 `yaml:"supplyApy"`
	BorrowAPY   float64 `yaml:"borrowApy"`
	Utilization float64 `yaml:"utilization"`
}

type Proposal struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Status       string `yaml:"status"`
	VotesFor     int64  `yaml:"votesFor"`
	VotesAgainst int64  `yaml:"votesAgainst"`
	EndsOn       string `yaml:"endsOn"`
}

// Catalog is read-only after Load.
type Catalog struct {
	NFTs      []NFT      `yaml:"nfts"`
	Vaults    []Vault    `yaml:"vaults"`
	Pools     []Pool     `yaml:"pools"`
	Proposals []Proposal `yaml:"proposals"`
}

// Load decodes the embedded fixture.
func Load() (*Catalog, error) {
	return parse(fixture)
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(c.NFTs))
	for _, n := range c.NFTs {
		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("decode catalog: duplicate nft %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for _, v := range c.Vaults {
		for _, id := range v.NFTIDs {
			if _, ok := seen[id]; !ok {
				return nil, fmt.Errorf("decode catalog: vault %s references unknown nft %q", v.ID, id)
			}
		}
	}
	return &c, nil
}

func (c *Catalog) NFTByID(id string) (NFT, bool) {
	for _, n := range c.NFTs {
		if n.ID == id {
			return n, true
		}
	}
	return NFT{}, false
}

// VaultNFTs resolves the IP-NFTs backing a vault.
func (c *Catalog) VaultNFTs(v Vault) []NFT {
	out := make([]NFT, 0, len(v.NFTIDs))
	for _, id := range v.NFTIDs {
		if n, ok := c.NFTByID(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// TotalValueLocked sums the TVL of every vault.
func (c *Catalog) TotalValueLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range c.Vaults {
		sum = sum.Add(v.TVL)
	}
	return sum
}
