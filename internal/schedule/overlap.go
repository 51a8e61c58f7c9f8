package schedule

type blockSpan struct {
	start CompiledEvent
	end   TimeOfDay
}

// FindOverlaps pairs up block instances whose [start,end) intervals
// intersect. Each pair is reported once, earlier start first.
func FindOverlaps(ds DaySchedule) []OverlapWarning {
	var spans []blockSpan
	for _, e := range ds.Events {
		if e.Kind != EventStart {
			continue
		}
		end, ok := e.At.Add(e.Duration)
		if !ok {
			end = MinutesPerDay
		}
		spans = append(spans, blockSpan{start: e, end: end})
	}

	day := DayName(ds.Day)
	var out []OverlapWarning
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if a.start.At < b.end && b.start.At < a.end {
				out = append(out, OverlapWarning{Day: day, A: a.start, AEnd: a.end, B: b.start, BEnd: b.end})
			}
		}
	}
	return out
}
