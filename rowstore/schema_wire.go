package rowstore

import "github.com/ambrydata/mpr/container"

// ToRows projects the schema into the wire "schema-as-rows" shape: index 0
// is container.SchemaTemplate(), indices 1..N are one row per column with
// values positioned to match it (spec.md §3, design note §9).
func (s *Schema) ToRows() [][]interface{} {
	rows := make([][]interface{}, 0, len(s.Columns)+1)
	rows = append(rows, container.SchemaTemplate())
	for _, c := range s.Columns {
		rows = append(rows, columnToRow(c))
	}
	return rows
}

// FromRows rebuilds a Schema from the wire rows produced by ToRows. The
// caller (container.ReadMeta) has already re-checked the template
// invariant; FromRows trusts rows[0] matches container.SchemaTemplate().
func FromRows(rows [][]interface{}) Schema {
	if len(rows) <= 1 {
		return Schema{}
	}
	cols := make([]Column, 0, len(rows)-1)
	for _, r := range rows[1:] {
		cols = append(cols, rowToColumn(r))
	}
	return Schema{Columns: cols}
}

func columnToRow(c Column) []interface{} {
	hist := make([]interface{}, len(c.Hist))
	for i, v := range c.Hist {
		hist[i] = v
	}
	uvalues := make(map[string]interface{}, len(c.UValues))
	for k, v := range c.UValues {
		uvalues[k] = v
	}
	return []interface{}{
		c.Pos, c.Name, string(c.Type), c.Description, c.Start, c.Width,
		c.TypeCount, c.Ints, c.Floats, c.Strs, c.Nones, c.Dates, c.Times, c.DateTimes,
		string(c.ResolvedType), c.HasCodes, c.Length, string(c.LOM),
		c.StatCount, c.NUniques, c.Mean, c.Std, c.Min, c.P25, c.P50, c.P75, c.Max,
		c.Skewness, c.Kurtosis, hist, uvalues,
	}
}

func rowToColumn(r []interface{}) Column {
	g := func(i int) interface{} {
		if i < len(r) {
			return r[i]
		}
		return nil
	}
	c := Column{
		Pos:          asInt(g(0)),
		Name:         asString(g(1)),
		Type:         ResolvedType(asString(g(2))),
		Description:  asString(g(3)),
		Start:        asInt(g(4)),
		Width:        asInt(g(5)),
		TypeCount:    asInt(g(6)),
		Ints:         asInt(g(7)),
		Floats:       asInt(g(8)),
		Strs:         asInt(g(9)),
		Nones:        asInt(g(10)),
		Dates:        asInt(g(11)),
		Times:        asInt(g(12)),
		DateTimes:    asInt(g(13)),
		ResolvedType: ResolvedType(asString(g(14))),
		HasCodes:     asBool(g(15)),
		Length:       asInt(g(16)),
		LOM:          LOM(asString(g(17))),
		StatCount:    asInt(g(18)),
		NUniques:     asInt(g(19)),
		Mean:         asFloat(g(20)),
		Std:          asFloat(g(21)),
		Min:          asFloat(g(22)),
		P25:          asFloat(g(23)),
		P50:          asFloat(g(24)),
		P75:          asFloat(g(25)),
		Max:          asFloat(g(26)),
		Skewness:     asFloat(g(27)),
		Kurtosis:     asFloat(g(28)),
	}
	if hist, ok := g(29).([]interface{}); ok {
		c.Hist = make([]int, len(hist))
		for i, v := range hist {
			c.Hist[i] = asInt(v)
		}
	}
	if uv, ok := g(30).(map[string]interface{}); ok {
		c.UValues = make(map[string]int, len(uv))
		for k, v := range uv {
			c.UValues[k] = asInt(v)
		}
	}
	return c
}

func asInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return int(t)
	case float64:
		return int(t)
	default:
		return 0
	}
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return 0
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
