package service

import (
	"testing"

	"github.com/sitewave-growth/internal/constants"

	"github.com/shopspring/decimal"
)

func TestShowcaseBandForEntry(t *testing.T) {
	setting := ShowcaseDefaultSetting()

	cases := []struct {
		status string
		score  string
		want   string
	}{
		{constants.ArtifactStatusFeatured, "10", constants.BoostTierBronze},
		{constants.ArtifactStatusFeatured, "49.99", constants.BoostTierBronze},
		{constants.ArtifactStatusFeatured, "50", constants.BoostTierSilver},
		{constants.ArtifactStatusFeatured, "199.99", constants.BoostTierSilver},
		{constants.ArtifactStatusFeatured, "200", constants.BoostTierGold},
		{constants.ArtifactStatusFeatured, "500", constants.BoostTierPlatinum},
		{constants.ArtifactStatusFeatured, "99999", constants.BoostTierPlatinum},
		{constants.ArtifactStatusViral, "10", constants.BoostTierViral},
	}
	for _, tc := range cases {
		got := setting.BandForEntry(tc.status, decimal.RequireFromString(tc.score))
		if got != tc.want {
			t.Fatalf("band for %s score %s want %s got %s", tc.status, tc.score, tc.want, got)
		}
	}
}

func TestNormalizeShowcaseSettingDefaults(t *testing.T) {
	setting := NormalizeShowcaseSetting(ShowcaseSetting{})

	defaults := ShowcaseDefaultSetting()
	if setting != defaults {
		t.Fatalf("zero value should normalize to defaults, got %+v", setting)
	}
}
