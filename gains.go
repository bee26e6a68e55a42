package taxlots

// Gains accumulates realized profit and loss, split by holding period.
type Gains struct {
	ShortTerm Money
	LongTerm  Money
}

// Total returns the combined short-term and long-term profit.
func (g Gains) Total() Money { return g.ShortTerm.Add(g.LongTerm) }

// Add returns the sum of two gains, bucket by bucket.
func (g Gains) Add(h Gains) Gains {
	return Gains{ShortTerm: g.ShortTerm.Add(h.ShortTerm), LongTerm: g.LongTerm.Add(h.LongTerm)}
}

// record books a disposal in its holding period bucket.
func (g *Gains) record(d Disposal) {
	if d.LongTerm {
		g.LongTerm = g.LongTerm.Add(d.Gain)
	} else {
		g.ShortTerm = g.ShortTerm.Add(d.Gain)
	}
}

func (g Gains) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("shortTerm", g.ShortTerm)
	w.Append("longTerm", g.LongTerm)
	w.Append("total", g.Total())
	return w.MarshalJSON()
}
