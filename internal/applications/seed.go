package applications

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemoApplications returns the demonstration fixture: three pending and two
// approved applications.
func DemoApplications() []Application {
	day := func(d int, h int) time.Time { return time.Date(2024, time.March, d, h, 0, 0, 0, time.UTC) }
	reviewed := func(d int) *time.Time { t := day(d, 16); return &t }

	return []Application{
		{
			ID:          "app-demo-0001",
			SubmittedAt: day(4, 9),
			Status:      StatusPending,
			SubmittedBy: "demo@nanofi.io",
			FormData: mustWrap(
				InventorInfo{Name: "Dr. Amara Okafor", Email: "amara.okafor@helixlabs.example", Organization: "Helix Labs", Country: "NG"},
				PatentInfo{Title: "Thermostable mRNA delivery lipid", PatentNumber: "US11823541B2", FilingDate: "2021-06-14", Jurisdiction: "US", Category: "Biotech"},
				ValuationInfo{EstimatedValue: usdc(2_400_000), Currency: "USDC", Methodology: "Income approach", RequestedAmount: usdc(600_000)},
			),
		},
		{
			ID:          "app-demo-0002",
			SubmittedAt: day(6, 11),
			Status:      StatusPending,
			SubmittedBy: "investor@nanofi.io",
			FormData: mustWrap(
				InventorInfo{Name: "Lena Fischer", Email: "lena@quantacell.example", Organization: "QuantaCell GmbH", Country: "DE"},
				PatentInfo{Title: "Solid-state sodium battery electrolyte", PatentNumber: "EP4012877A1", FilingDate: "2022-02-03", Jurisdiction: "EP", Category: "Energy"},
				ValuationInfo{EstimatedValue: usdc(1_150_000), Currency: "USDC", Methodology: "Market comparables", RequestedAmount: usdc(300_000)},
			),
		},
		{
			ID:          "app-demo-0003",
			SubmittedAt: day(9, 14),
			Status:      StatusPending,
			SubmittedBy: "demo@nanofi.io",
			FormData: mustWrap(
				InventorInfo{Name: "Kenji Watanabe", Email: "kenji@optiview.example", Organization: "OptiView", Country: "JP"},
				PatentInfo{Title: "Low-power retinal projection optics", PatentNumber: "JP2023118842A", FilingDate: "2023-01-19", Jurisdiction: "JP", Category: "Hardware"},
			),
		},
		{
			ID:          "app-demo-0004",
			SubmittedAt: day(1, 10),
			Status:      StatusApproved,
			SubmittedBy: "investor@nanofi.io",
			FormData: mustWrap(
				InventorInfo{Name: "Sofia Marquez", Email: "sofia@agrigen.example", Organization: "AgriGen", Country: "ES"},
				PatentInfo{Title: "Drought-tolerant wheat gene edit", PatentNumber: "ES2901234T3", FilingDate: "2020-09-30", Jurisdiction: "ES", Category: "AgTech"},
				ValuationInfo{EstimatedValue: usdc(3_800_000), Currency: "USDC", Methodology: "Cost approach", RequestedAmount: usdc(900_000)},
			),
			ReviewedBy:  "spv@nanofi.io",
			ReviewedAt:  reviewed(3),
			ReviewNotes: "Claims verified with the registry.",
		},
		{
			ID:          "app-demo-0005",
			SubmittedAt: day(2, 15),
			Status:      StatusApproved,
			SubmittedBy: "demo@nanofi.io",
			FormData: mustWrap(
				InventorInfo{Name: "Priya Raman", Email: "priya@neuroloop.example", Organization: "NeuroLoop", Country: "IN"},
				PatentInfo{Title: "Closed-loop neural stimulation controller", PatentNumber: "US11642211B1", FilingDate: "2021-11-02", Jurisdiction: "US", Category: "MedTech"},
				ValuationInfo{EstimatedValue: usdc(5_200_000), Currency: "USDC", Methodology: "Income approach", RequestedAmount: usdc(1_250_000)},
			),
			ReviewedBy:  "reviewer@nanofi.io",
			ReviewedAt:  reviewed(5),
			ReviewNotes: "Approved for a 25% LTV vault.",
		},
	}
}

func usdc(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func mustWrap(sections ...SectionPayload) FormData {
	fd, err := Wrap(sections...)
	if err != nil {
		panic(err)
	}
	return fd
}
