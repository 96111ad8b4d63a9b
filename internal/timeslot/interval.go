package timeslot

import "sort"

// Interval полуоткрытый интервал [Start, End) в секундах.
// Точку отсчёта выбирает вызывающий (обычно локальная полночь), поэтому
// значения бывают отрицательными или больше суток.
type Interval struct {
	Start int
	End   int
}

// Span интервал из двух значений времени со сдвигом base секунд
func Span(start, end Clock, base int) Interval {
	return Interval{Start: base + int(start), End: base + int(end)}
}

func (i Interval) Len() int { return i.End - i.Start }

func (i Interval) Empty() bool { return i.End <= i.Start }

// Clip пересечение i с [lo, hi)
func (i Interval) Clip(lo, hi int) (Interval, bool) {
	if i.Start < lo {
		i.Start = lo
	}
	if i.End > hi {
		i.End = hi
	}
	return i, !i.Empty()
}

// Overlaps пересекаются ли [aStart, aEnd) и [bStart, bEnd).
// Касание концами пересечением не считается.
func Overlaps[T ~int | ~int64](aStart, aEnd, bStart, bEnd T) bool {
	return aStart < bEnd && aEnd > bStart
}

// Minutes длина [start, end) в целых минутах:
// (endHour*60+endMin) - (startHour*60+startMin). Результат <= 0 вызывающий отклоняет.
func Minutes(start, end Clock) int {
	return end.Minutes() - start.Minutes()
}

// Merge сортирует интервалы и склеивает пересекающиеся и соседние.
// Пустые интервалы отбрасываются.
func Merge(intervals []Interval) []Interval {
	sorted := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Empty() {
			sorted = append(sorted, iv)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	var merged []Interval
	for _, iv := range sorted {
		last := len(merged) - 1
		if last >= 0 && iv.Start <= merged[last].End {
			if iv.End > merged[last].End {
				merged[last].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract вычитает занятые интервалы из free и возвращает
// максимальные оставшиеся куски по возрастанию
func Subtract(free Interval, busy []Interval) []Interval {
	if free.Empty() {
		return nil
	}

	var result []Interval
	cursor := free.Start
	for _, b := range Merge(busy) {
		if b.End <= cursor {
			continue
		}
		if b.Start >= free.End {
			break
		}
		if b.Start > cursor {
			result = append(result, Interval{Start: cursor, End: b.Start})
		}
		cursor = b.End
		if cursor >= free.End {
			return result
		}
	}
	if cursor < free.End {
		result = append(result, Interval{Start: cursor, End: free.End})
	}
	return result
}

// Split режет iv на подряд идущие куски ровно по size секунд от iv.Start.
// Хвост короче size отбрасывается.
func Split(iv Interval, size int) []Interval {
	if size <= 0 {
		return nil
	}
	var parts []Interval
	for start := iv.Start; start+size <= iv.End; start += size {
		parts = append(parts, Interval{Start: start, End: start + size})
	}
	return parts
}
