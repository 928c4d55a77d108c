package domain

// trailingWindow is a fixed-capacity ring buffer over the most recent days.
// Pushing into a full window evicts the oldest day.
type trailingWindow struct {
	buf   [PersistenceWindowSize]DayRecord
	start int // index of the oldest day
	n     int
}

func (w *trailingWindow) push(day DayRecord) {
	if w.n < len(w.buf) {
		w.buf[(w.start+w.n)%len(w.buf)] = day
		w.n++
		return
	}
	w.buf[w.start] = day
	w.start = (w.start + 1) % len(w.buf)
}

func (w *trailingWindow) len() int { return w.n }

// days returns the buffered days oldest first. The returned slice is a copy.
func (w *trailingWindow) days() []DayRecord {
	out := make([]DayRecord, w.n)
	for i := range w.n {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Annotate runs the daily and persistence rules over a chronologically
// ordered forecast and returns one enriched record per input day, in the
// same order. A persistence alert replaces the day's daily alert whenever
// it fires, regardless of level. The input slice is not modified.
func Annotate(days []DayRecord) []EnrichedDayRecord {
	out := make([]EnrichedDayRecord, 0, len(days))
	var window trailingWindow

	for _, day := range days {
		alert := EvaluateDaily(day)

		window.push(day)
		if persistent := EvaluatePersistent(window.days()); persistent != nil {
			alert = persistent
		}

		out = append(out, EnrichedDayRecord{DayRecord: day, Alert: alert})
	}
	return out
}

// AnnotateDocument parses a forecast document and annotates it.
func AnnotateDocument(data []byte) ([]EnrichedDayRecord, error) {
	days, err := ParseForecast(data)
	if err != nil {
		return nil, err
	}
	return Annotate(days), nil
}
