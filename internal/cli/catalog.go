package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
)

// CatalogSections are the collections accepted by Catalog.
var CatalogSections = []string{"nfts", "vaults", "pools", "proposals"}

// Catalog prints one collection of the mock market data.
func (a *App) Catalog(_ context.Context, section string) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)

	switch section {
	case "nfts":
		fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tOWNER\tVALUATION\tROYALTY")
		for _, n := range a.catalog.NFTs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f%%\n", n.ID, n.Title, n.Category, n.Owner, n.Valuation.StringFixed(0), n.Royalty*100)
		}
	case "vaults":
		fmt.Fprintln(tw, "ID\tNAME\tASSET\tAPY\tTVL\tIP-NFTS")
		for _, v := range a.catalog.Vaults {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%s\t%s\n", v.ID, v.Name, v.Asset, v.APY*100, v.TVL.StringFixed(0), strings.Join(v.NFTIDs, ","))
		}
		defer fmt.Fprintf(a.out, "\nTotal value locked: %s\n", a.catalog.TotalValueLocked().StringFixed(0))
	case "pools":
		fmt.Fprintln(tw, "ID\tNAME\tASSET\tSUPPLY APY\tBORROW APY\tUTILIZATION")
		for _, p := range a.catalog.Pools {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%.1f%%\t%.0f%%\n", p.ID, p.Name, p.Asset, p.SupplyAPY*100, p.BorrowAPY*100, p.Utilization*100)
		}
	case "proposals":
		fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tFOR\tAGAINST\tENDS")
		for _, p := range a.catalog.Proposals {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", p.ID, p.Title, p.Status, p.VotesFor, p.VotesAgainst, p.EndsOn)
		}
	default:
		return fmt.Errorf("%w: catalog [%s]", errUsage, strings.Join(CatalogSections, "|"))
	}
	return tw.Flush()
}
