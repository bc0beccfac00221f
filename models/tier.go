package models

// Tier is a discrete user rank derived from cumulative points.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// TierBand maps a tier to the minimum points required to hold it.
type TierBand struct {
	Tier      Tier
	MinPoints float64
}

// DefaultTierBands is the ascending threshold table used to classify users.
// The tier is a pure function of the current points balance: the last band
// whose minimum the balance meets wins, with no hysteresis.
var DefaultTierBands = []TierBand{
	{TierBronze, 0},
	{TierSilver, 100},
	{TierGold, 500},
	{TierPlatinum, 2000},
	{TierDiamond, 10000},
}

// TierForPoints returns the tier for a points balance using the given
// ascending bands. Balances above the top threshold yield the highest tier.
func TierForPoints(points float64, bands []TierBand) Tier {
	if len(bands) == 0 {
		bands = DefaultTierBands
	}
	tier := bands[0].Tier
	for _, band := range bands {
		if points >= band.MinPoints {
			tier = band.Tier
		}
	}
	return tier
}
