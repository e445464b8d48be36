package models

// WasteAmount is the recycled amount for one waste type.
type WasteAmount struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// ImpactMetrics aggregates the environmental effect of recycling.
type ImpactMetrics struct {
	CO2Saved           float64 `json:"co2Saved"`
	WaterSaved         float64 `json:"waterSaved"`
	EnergySaved        float64 `json:"energySaved"`
	TreesPlanted       float64 `json:"treesPlanted,omitempty"`
	MaterialsRecovered float64 `json:"materialsRecovered,omitempty"`
}

// UserStats is the per-user dashboard summary.
type UserStats struct {
	TotalWaste    float64       `json:"totalWaste"`
	WasteByType   []WasteAmount `json:"wasteByType"`
	ImpactMetrics ImpactMetrics `json:"impactMetrics"`
}

type WasteType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type LeaderboardEntry struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// Dashboard bundles the independently fetched dashboard sections. A section
// that failed to load is left empty and its error is kept in Errors under
// the section name.
type Dashboard struct {
	Stats       *UserStats
	Impact      *ImpactMetrics
	Leaderboard []LeaderboardEntry
	WasteTypes  []WasteType
	Errors      map[string]error
}
