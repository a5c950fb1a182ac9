package privacy

// MaskFields returns a copy of data with every string leaf masked.
// Nested maps and slices are walked; other values are copied as is.
func (m *Masker) MaskFields(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = m.maskValue(value)
	}
	return out
}

func (m *Masker) maskValue(value any) any {
	switch v := value.(type) {
	case string:
		return m.Mask(v).Masked
	case map[string]any:
		return m.MaskFields(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = m.maskValue(item)
		}
		return items
	case []string:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = m.Mask(item).Masked
		}
		return items
	default:
		return v
	}
}
