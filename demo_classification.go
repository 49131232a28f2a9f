package main

import (
	"fmt"

	"heatwatch/internal/models"
	"heatwatch/internal/services"
)

// Demonstrates policy ranking and WBGT classification without a database
func main() {
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("HEATWATCH - CLASSIFICATION DEMONSTRATION")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()

	year2022 := 2022
	year2024 := 2024

	policies := []*models.HeatPolicy{
		{
			ID:            "nfhs-xc-2022",
			Label:         "NFHS Cross Country Guidelines 2022",
			GoverningBody: models.GoverningBodyNFHS,
			WBGTUnit:      models.WBGTUnitF,
			EffectiveYear: &year2022,
			LowMax:        fptr(82),
			ModerateMin:   fptr(82.1),
			ModerateMax:   fptr(86.9),
			HighMin:       fptr(87),
			HighMax:       fptr(89.9),
			ExtremeMin:    fptr(90),
		},
		{
			ID:            "nfhs-xc-2024",
			Label:         "NFHS Cross Country Guidelines 2024",
			GoverningBody: models.GoverningBodyNFHS,
			WBGTUnit:      models.WBGTUnitF,
			EffectiveYear: &year2024,
			IsDefault:     true,
			LowMax:        fptr(79.9),
			ModerateMin:   fptr(80),
			ModerateMax:   fptr(84.5),
			HighMin:       fptr(84.6),
			HighMax:       fptr(87.5),
			ExtremeMin:    fptr(87.6),
		},
	}

	fmt.Println("Candidate ranking (higher effective year wins):")
	fmt.Println("─────────────────────────────────────────────────────────────")
	services.RankPolicies(policies)
	for i, p := range policies {
		fmt.Printf("  %d. %s (effective %d)\n", i+1, p.Label, *p.EffectiveYear)
	}
	fmt.Println()

	top := policies[0]

	fmt.Printf("Classifying a week of WBGT readings under %q:\n", top.Label)
	fmt.Println("─────────────────────────────────────────────────────────────")

	readings := []struct {
		day   string
		wbgtF *float64
	}{
		{"Monday", fptr(76.2)},
		{"Tuesday", fptr(81.4)},
		{"Wednesday", fptr(85.1)},
		{"Thursday", fptr(88.9)},
		{"Friday", nil},
		{"Saturday", fptr(91.3)},
	}

	for _, r := range readings {
		band := top.Classify(r.wbgtF)

		wbgt := "NULL"
		if r.wbgtF != nil {
			wbgt = fmt.Sprintf("%.1f°F", *r.wbgtF)
		}

		risk := "unclassifiable (no data)"
		if band != nil {
			risk = string(*band)
		}

		fmt.Printf("  %-10s WBGT: %-8s → %s\n", r.day, wbgt, risk)
	}

	fmt.Println()
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("With a database and forecast provider, the weekly job would:")
	fmt.Println("  • Resolve each team-season's policy (pin first, then discovery)")
	fmt.Println("  • Classify every scheduled practice against its day's forecast")
	fmt.Println("  • Append an immutable snapshot row per practice per run")
	fmt.Println("  • Update each practice's wbgt_f / wbgt_c / heat_risk summary")
	fmt.Println()
}

func fptr(v float64) *float64 {
	return &v
}
