package schedule

import "sort"

// EventsAt returns every event triggering at minute t.
func (ds DaySchedule) EventsAt(t TimeOfDay) []CompiledEvent {
	i := sort.Search(len(ds.Events), func(i int) bool { return ds.Events[i].At >= t })
	j := i
	for j < len(ds.Events) && ds.Events[j].At == t {
		j++
	}
	if i == j {
		return nil
	}
	return append([]CompiledEvent(nil), ds.Events[i:j]...)
}

// Next returns up to n events strictly after t. It stops at the end of the
// day; callers wanting tomorrow's events ask tomorrow's DaySchedule.
func (ds DaySchedule) Next(t TimeOfDay, n int) []CompiledEvent {
	if n <= 0 {
		return nil
	}
	i := sort.Search(len(ds.Events), func(i int) bool { return ds.Events[i].At > t })
	end := i + n
	if end > len(ds.Events) {
		end = len(ds.Events)
	}
	if i == end {
		return nil
	}
	return append([]CompiledEvent(nil), ds.Events[i:end]...)
}

// Current returns the latest event at or before t.
func (ds DaySchedule) Current(t TimeOfDay) (CompiledEvent, bool) {
	i := sort.Search(len(ds.Events), func(i int) bool { return ds.Events[i].At > t })
	if i == 0 {
		return CompiledEvent{}, false
	}
	return ds.Events[i-1], true
}
