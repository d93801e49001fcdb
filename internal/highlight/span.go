package highlight

// Span is a styled range of a block, measured in runes.
type Span struct {
	Start  int
	Length int
	Style  string
}

// End returns the exclusive end offset.
func (s Span) End() int {
	return s.Start + s.Length
}

// Contains reports whether offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End()
}

// StyleAt returns the style of the last span covering offset, or "" when
// no span covers it.
func StyleAt(spans []Span, offset int) string {
	style := ""
	for _, sp := range spans {
		if sp.Contains(offset) {
			style = sp.Style
		}
	}
	return style
}

// Resolve applies spans in order over a block of n runes and returns the
// effective styling as maximal non-overlapping runs sorted by start. Later
// spans overwrite earlier ones character by character.
func Resolve(spans []Span, n int) []Span {
	if n <= 0 || len(spans) == 0 {
		return nil
	}

	owner := make([]string, n)
	for _, sp := range spans {
		start := max(sp.Start, 0)
		end := min(sp.End(), n)
		for i := start; i < end; i++ {
			owner[i] = sp.Style
		}
	}

	var out []Span
	for i := 0; i < n; {
		if owner[i] == "" {
			i++
			continue
		}
		j := i + 1
		for j < n && owner[j] == owner[i] {
			j++
		}
		out = append(out, Span{Start: i, Length: j - i, Style: owner[i]})
		i = j
	}
	return out
}
