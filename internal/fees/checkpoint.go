package fees

import "feeScope/internal/model"

// Advance moves index forward while the next checkpoint's timestamp is at or before day and
// returns the new index, the checkpoint it points at, and whether it moved.
//
// A move means fees up to that checkpoint were realized, so callers reset their
// since-checkpoint baseline and any withheld carry.
func Advance(index int, checkpoints []model.PositionCheckpoint, day uint64) (int, model.PositionCheckpoint, bool) {
	if len(checkpoints) == 0 {
		return index, model.PositionCheckpoint{}, false
	}
	if index < 0 {
		index = 0
	}
	if index >= len(checkpoints) {
		index = len(checkpoints) - 1
	}

	start := index
	for index+1 < len(checkpoints) && checkpoints[index+1].Timestamp <= day {
		index++
	}
	return index, checkpoints[index], index != start
}

// EarliestCheckpoint returns the smallest checkpoint timestamp.
func EarliestCheckpoint(checkpoints []model.PositionCheckpoint) (uint64, bool) {
	if len(checkpoints) == 0 {
		return 0, false
	}
	earliest := checkpoints[0].Timestamp
	for _, cp := range checkpoints[1:] {
		if cp.Timestamp < earliest {
			earliest = cp.Timestamp
		}
	}
	return earliest, true
}

// EffectiveFloor returns max(requested, earliest checkpoint timestamp).
func EffectiveFloor(requested uint64, checkpoints []model.PositionCheckpoint) uint64 {
	earliest, ok := EarliestCheckpoint(checkpoints)
	if ok && earliest > requested {
		return earliest
	}
	return requested
}

// FilterFromCheckpoint drops pool days dated before the earliest checkpoint.
func FilterFromCheckpoint(days []model.PoolDayRecord, checkpoints []model.PositionCheckpoint) []model.PoolDayRecord {
	earliest, ok := EarliestCheckpoint(checkpoints)
	if !ok {
		return nil
	}
	out := make([]model.PoolDayRecord, 0, len(days))
	for _, day := range days {
		if day.Date >= earliest {
			out = append(out, day)
		}
	}
	return out
}
