package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForPoints(t *testing.T) {
	tests := []struct {
		name   string
		points float64
		want   Tier
	}{
		{"zero", 0, TierBronze},
		{"just below silver", 99.9, TierBronze},
		{"exactly silver", 100, TierSilver},
		{"mid gold", 1200, TierGold},
		{"exactly platinum", 2000, TierPlatinum},
		{"diamond", 25000, TierDiamond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierForPoints(tt.points, DefaultTierBands))
		})
	}
}
