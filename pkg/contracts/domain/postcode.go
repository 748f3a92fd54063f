package domain

// PostcodeRange is one declared inclusive range of postcodes.
// End equals Start when the declaration is a single postcode.
type PostcodeRange struct {
	Start  int    `json:"start" validate:"min=0"`
	End    int    `json:"end" validate:"gtefield=Start"`
	Region string `json:"region" validate:"required"`
	Line   int    `json:"line"` // 1-based data row in the source file, for error reporting
}

// Contains reports whether postcode falls inside the range.
func (r PostcodeRange) Contains(postcode int) bool {
	return postcode >= r.Start && postcode <= r.End
}

// Size returns the number of postcodes covered by the range.
func (r PostcodeRange) Size() int {
	return r.End - r.Start + 1
}

// RegionArea maps a region to the area it belongs to.
type RegionArea struct {
	Region string `json:"region" validate:"required"`
	Area   string `json:"area"`
}

// PostcodeEntry is one row of the postcode lookup table.
// Area is nil when the region has no RegionArea declaration.
type PostcodeEntry struct {
	Postcode int     `json:"postcode"`
	Region   string  `json:"region"`
	Area     *string `json:"area,omitempty"`
}

// PostcodeLookup is the derived postcode → region → area table.
// Entries hold one row per distinct postcode in first-declaration order.
type PostcodeLookup struct {
	Entries []PostcodeEntry `json:"entries"`
	index   map[int]int
}

// NewPostcodeLookup builds a lookup over the given entries.
func NewPostcodeLookup(entries []PostcodeEntry) *PostcodeLookup {
	l := &PostcodeLookup{
		Entries: entries,
		index:   make(map[int]int, len(entries)),
	}
	for i, e := range entries {
		l.index[e.Postcode] = i
	}
	return l
}

// Get returns the entry for postcode.
func (l *PostcodeLookup) Get(postcode int) (PostcodeEntry, bool) {
	if l == nil {
		return PostcodeEntry{}, false
	}
	if l.index == nil {
		l.index = make(map[int]int, len(l.Entries))
		for i, e := range l.Entries {
			l.index[e.Postcode] = i
		}
	}
	i, ok := l.index[postcode]
	if !ok {
		return PostcodeEntry{}, false
	}
	return l.Entries[i], true
}

// Len returns the number of distinct postcodes.
func (l *PostcodeLookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}
