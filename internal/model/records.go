package model

// DailyFeeRecord is one reconstructed day of a position's fee series.
type DailyFeeRecord struct {
	PositionID      string `json:"position_id"`
	Pool            string `json:"pool"`
	Owner           string `json:"owner,omitempty"`
	Date            uint64 `json:"date"`
	Day             string `json:"day"`
	CheckpointIndex int    `json:"checkpoint_index"`
	Amount0         string `json:"amount0"`
	Amount1         string `json:"amount1"`
	Amount0Decimal  string `json:"amount0_decimal,omitempty"`
	Amount1Decimal  string `json:"amount1_decimal,omitempty"`
	Carry0          string `json:"carry0,omitempty"`
	Carry1          string `json:"carry1,omitempty"`
}

// FeeEstimateRecord is a short-horizon fee rate projection for a tick range.
type FeeEstimateRecord struct {
	Pool            string `json:"pool"`
	TickLower       int32  `json:"tick_lower"`
	TickUpper       int32  `json:"tick_upper"`
	ResolvedLower   int32  `json:"resolved_lower"`
	ResolvedUpper   int32  `json:"resolved_upper"`
	Days            string `json:"days"`
	FromBlock       uint64 `json:"from_block"`
	LiquidityUSD    string `json:"liquidity_usd"`
	Liquidity       string `json:"liquidity"`
	Amount0PerDay   string `json:"amount0_per_day"`
	Amount1PerDay   string `json:"amount1_per_day"`
	USDPerDay       string `json:"usd_per_day"`
	APR             string `json:"apr,omitempty"`
	Available       bool   `json:"available"`
	UnavailableNote string `json:"unavailable_note,omitempty"`
	ComputedAt      string `json:"computed_at"`
}

// VerificationRecord compares reconstructed fees against the contract's collectable amounts.
type VerificationRecord struct {
	PositionID     string `json:"position_id"`
	Owner          string `json:"owner"`
	Block          uint64 `json:"block"`
	Collectable0   string `json:"collectable0"`
	Collectable1   string `json:"collectable1"`
	TokensOwed0    string `json:"tokens_owed0"`
	TokensOwed1    string `json:"tokens_owed1"`
	Reference0     string `json:"reference0"`
	Reference1     string `json:"reference1"`
	DailySum0      string `json:"daily_sum0"`
	DailySum1      string `json:"daily_sum1"`
	Snapshot0      string `json:"snapshot0"`
	Snapshot1      string `json:"snapshot1"`
	Tolerance      string `json:"tolerance"`
	DailyWithin    bool   `json:"daily_within"`
	SnapshotWithin bool   `json:"snapshot_within"`
	CheckedAt      string `json:"checked_at"`
}

// OwnerTotalRecord is the uncollected fees of one owner position, or the owner total when
// PositionID is empty.
type OwnerTotalRecord struct {
	Owner      string `json:"owner"`
	Pool       string `json:"pool"`
	PositionID string `json:"position_id,omitempty"`
	Arithmetic string `json:"arithmetic"`
	Amount0    string `json:"amount0"`
	Amount1    string `json:"amount1"`
	ComputedAt string `json:"computed_at"`
}
