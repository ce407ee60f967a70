package wantlist

// Summary counts the outcome of a run.
type Summary struct {
	Kind    string
	Needed  int
	Covered int
	Surplus int
}

// Summary returns the counts of the flat want-list.
func (w *WantList) Summary() Summary {
	return Summary{
		Kind:    "wantlist",
		Needed:  len(w.Needed),
		Covered: len(w.Covered),
		Surplus: len(w.Surplus),
	}
}

// Summary returns the counts of the detailed want-list.
func (d *DetailedWantList) Summary() Summary {
	s := Summary{Kind: "detailed", Surplus: len(d.Remaining)}
	for _, sec := range d.Sections {
		short := len(sec.Shortfall())
		s.Needed += short
		s.Covered += len(sec.Elements) - short
	}
	return s
}

// Summary returns the counts of the third-party cross-check.
func (t *ThirdPartyResult) Summary() Summary {
	return Summary{
		Kind:    "thirdparty",
		Needed:  len(t.StillMissing),
		Covered: len(t.Obtainable),
		Surplus: len(t.Unneeded),
	}
}
