package domain

const (
	// SilverPerGold and SilverPerObsidian are the fixed exchange rates.
	SilverPerGold     = 5
	SilverPerObsidian = 25
)

// CoinBreakdown splits a raw coin total into denominations.
// 25*Obsidian + 5*Gold + Silver always equals the total it came from.
type CoinBreakdown struct {
	Obsidian int64 `json:"obsidian"`
	Gold     int64 `json:"gold"`
	Silver   int64 `json:"silver"`
}

func (b CoinBreakdown) Total() int64 {
	return b.Obsidian*SilverPerObsidian + b.Gold*SilverPerGold + b.Silver
}

// Decompose breaks total into obsidian, gold and silver coins.
// Negative totals are treated as zero.
func Decompose(total int64) CoinBreakdown {
	if total < 0 {
		total = 0
	}
	remainder := total % SilverPerObsidian
	return CoinBreakdown{
		Obsidian: total / SilverPerObsidian,
		Gold:     remainder / SilverPerGold,
		Silver:   remainder % SilverPerGold,
	}
}
