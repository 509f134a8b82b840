package aggregation

// Frequency: количество вхождений строки.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountByName подсчитывает вхождения с точным сравнением строк.
// Результат упорядочен по первому появлению.
func CountByName(items []string) []Frequency {
	index := make(map[string]int, len(items))
	var out []Frequency
	for _, item := range items {
		if i, ok := index[item]; ok {
			out[i].Count++
			continue
		}
		index[item] = len(out)
		out = append(out, Frequency{Value: item, Count: 1})
	}
	return out
}

// MostFrequent возвращает самую частую строку. При равенстве побеждает та,
// что встретилась раньше. Регистр и пробелы не нормализуются.
func MostFrequent(items []string) (Frequency, bool) {
	var best Frequency
	found := false
	for _, f := range CountByName(items) {
		if !found || f.Count > best.Count {
			best = f
			found = true
		}
	}
	return best, found
}
