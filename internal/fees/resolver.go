package fees

import (
	"sort"

	"feeScope/internal/model"
)

// TickHistory is one tick's day records, ordered by date for lookup.
type TickHistory struct {
	index   int32
	records []model.TickDayRecord
}

// NewTickHistory keeps the records belonging to tick index and sorts them by date.
// The input order does not matter and the input slice is not modified.
func NewTickHistory(index int32, records []model.TickDayRecord) TickHistory {
	kept := make([]model.TickDayRecord, 0, len(records))
	for _, rec := range records {
		if rec.Index == index {
			kept = append(kept, rec)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })
	return TickHistory{index: index, records: kept}
}

// Len returns the number of records for the tick.
func (h TickHistory) Len() int {
	return len(h.records)
}

// Resolve returns the tick state to use on asOf: the record dated asOf if one exists,
// otherwise the latest record dated before asOf, otherwise fallback unchanged.
func (h TickHistory) Resolve(asOf uint64, fallback model.Tick) model.Tick {
	i := sort.Search(len(h.records), func(i int) bool { return h.records[i].Date > asOf })
	if i == 0 {
		return fallback
	}
	return h.records[i-1].Tick
}

// ResolveTick resolves a single boundary tick from its history. Callers resolving many dates
// against the same history should build a TickHistory once instead.
func ResolveTick(tickIndex int32, asOf uint64, history []model.TickDayRecord, fallback model.Tick) model.Tick {
	return NewTickHistory(tickIndex, history).Resolve(asOf, fallback)
}
