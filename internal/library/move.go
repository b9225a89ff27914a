package library

// Move relocates count contiguous pages starting at from so that they begin
// at index to, where to is counted after the removal. It mirrors
//
//	array.splice(to, 0, ...array.splice(from, count))
//
// including the clamping of out-of-range and negative indices, so a move
// with to > from lands one slot further right than a naive swap would.
// The input slice is not modified.
func Move(pages []string, from, to, count int) []string {
	out := append([]string(nil), pages...)

	start := spliceIndex(from, len(out))
	if count < 0 {
		count = 0
	}
	if count > len(out)-start {
		count = len(out) - start
	}
	moved := append([]string(nil), out[start:start+count]...)
	out = append(out[:start], out[start+count:]...)

	at := spliceIndex(to, len(out))
	result := make([]string, 0, len(pages))
	result = append(result, out[:at]...)
	result = append(result, moved...)
	result = append(result, out[at:]...)
	return result
}

func spliceIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
		return i
	}
	if i > n {
		return n
	}
	return i
}

// RemoveAt drops the page at index.
func RemoveAt(pages []string, index int) ([]string, error) {
	if index < 0 || index >= len(pages) {
		return nil, ErrPageIndex
	}
	out := make([]string, 0, len(pages)-1)
	out = append(out, pages[:index]...)
	return append(out, pages[index+1:]...), nil
}

// Dedupe keeps the first occurrence of every page, preserving order.
func Dedupe(pages []string) []string {
	seen := make(map[string]struct{}, len(pages))
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
