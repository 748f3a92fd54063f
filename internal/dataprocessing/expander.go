package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "fuelcli/internal/errors"
	"fuelcli/pkg/contracts/domain"
)

// rangeSeparator splits "A - B" declarations. A bare hyphen is not a separator.
const rangeSeparator = " - "

// ParseRange parses a postcode range declaration: a single integer "A" or an
// inclusive range "A - B". Parts are trimmed.
func ParseRange(s string) (start, end int, err error) {
	parts := strings.Split(s, rangeSeparator)
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("expected at most two parts, got %d", len(parts))
	}

	start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("range start: %w", err)
	}

	end = start
	if len(parts) == 2 {
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("range end: %w", err)
		}
	}

	if start > end {
		return 0, 0, fmt.Errorf("range start %d is greater than end %d", start, end)
	}

	return start, end, nil
}

// PostcodeAssignments maps each postcode to the region of the last range that
// covered it. Iteration follows the order in which postcodes were first seen.
type PostcodeAssignments struct {
	order   []int
	regions map[int]string

	// Reassigned counts postcodes overwritten by a later range.
	Reassigned int
}

func newPostcodeAssignments() *PostcodeAssignments {
	return &PostcodeAssignments{regions: make(map[int]string)}
}

func (a *PostcodeAssignments) assign(postcode int, region string) {
	if _, seen := a.regions[postcode]; seen {
		a.Reassigned++
	} else {
		a.order = append(a.order, postcode)
	}
	a.regions[postcode] = region
}

// Region returns the region assigned to postcode.
func (a *PostcodeAssignments) Region(postcode int) (string, bool) {
	r, ok := a.regions[postcode]
	return r, ok
}

// Postcodes returns the assigned postcodes in first-insertion order.
func (a *PostcodeAssignments) Postcodes() []int {
	return append([]int(nil), a.order...)
}

// Len returns the number of distinct postcodes.
func (a *PostcodeAssignments) Len() int {
	return len(a.order)
}

// ReducePostcodeRanges folds ranges in declaration order into postcode
// assignments. A later range overwrites the region of an earlier one.
func ReducePostcodeRanges(ranges []domain.PostcodeRange) *PostcodeAssignments {
	acc := newPostcodeAssignments()
	for _, r := range ranges {
		for pc := r.Start; pc <= r.End; pc++ {
			acc.assign(pc, r.Region)
		}
	}
	return acc
}

// RegionJoinReport describes the region → area join.
type RegionJoinReport struct {
	// UnmatchedRegions have no RegionArea row; their postcodes get a nil Area.
	UnmatchedRegions []string
	// DuplicateRegions appear more than once in RegionArea; the first row wins.
	DuplicateRegions []string
	// UnmatchedPostcodes counts lookup entries with a nil Area.
	UnmatchedPostcodes int
}

// JoinRegionAreas left-joins assignments with the region → area table.
func JoinRegionAreas(assignments *PostcodeAssignments, areas []domain.RegionArea) (*domain.PostcodeLookup, RegionJoinReport) {
	var report RegionJoinReport

	areaByRegion := make(map[string]string, len(areas))
	for _, ra := range areas {
		if _, dup := areaByRegion[ra.Region]; dup {
			report.DuplicateRegions = append(report.DuplicateRegions, ra.Region)
			continue
		}
		areaByRegion[ra.Region] = ra.Area
	}

	unmatched := make(map[string]bool)
	entries := make([]domain.PostcodeEntry, 0, assignments.Len())
	for _, pc := range assignments.order {
		region := assignments.regions[pc]
		entry := domain.PostcodeEntry{Postcode: pc, Region: region}
		if area, ok := areaByRegion[region]; ok {
			entry.Area = &area
		} else {
			report.UnmatchedPostcodes++
			if !unmatched[region] {
				unmatched[region] = true
				report.UnmatchedRegions = append(report.UnmatchedRegions, region)
			}
		}
		entries = append(entries, entry)
	}

	return domain.NewPostcodeLookup(entries), report
}

// ExpandResult is the output of one expansion.
type ExpandResult struct {
	Lookup     *domain.PostcodeLookup
	Ranges     int
	Postcodes  int
	Reassigned int
	Join       RegionJoinReport
}

// RangeExpander turns postcode range declarations into a postcode lookup.
type RangeExpander struct {
	logger *slog.Logger
}

// NewRangeExpander creates a RangeExpander. A nil logger uses slog.Default.
func NewRangeExpander(logger *slog.Logger) *RangeExpander {
	if logger == nil {
		logger = slog.Default()
	}
	return &RangeExpander{logger: logger}
}

// Expand validates ranges, reduces them last-write-wins and joins areas.
func (e *RangeExpander) Expand(ctx context.Context, ranges []domain.PostcodeRange, areas []domain.RegionArea) (*ExpandResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range ranges {
		if r.Start > r.End {
			return nil, apperrors.NewRangeParseError(r.Line, fmt.Sprintf("%d - %d", r.Start, r.End),
				fmt.Errorf("range start %d is greater than end %d", r.Start, r.End))
		}
	}

	e.logger.InfoContext(ctx, "Expanding postcode ranges", slog.Int("ranges", len(ranges)))

	assignments := ReducePostcodeRanges(ranges)
	lookup, report := JoinRegionAreas(assignments, areas)

	for _, region := range report.DuplicateRegions {
		e.logger.WarnContext(ctx, "Duplicate region in region area table, keeping first",
			slog.String("region", region))
	}
	for _, region := range report.UnmatchedRegions {
		e.logger.WarnContext(ctx, "Region has no area",
			slog.Any("error", apperrors.NewJoinMissError("region", region)))
	}

	result := &ExpandResult{
		Lookup:     lookup,
		Ranges:     len(ranges),
		Postcodes:  lookup.Len(),
		Reassigned: assignments.Reassigned,
		Join:       report,
	}

	e.logger.InfoContext(ctx, "Postcode ranges expanded",
		slog.Int("ranges", result.Ranges),
		slog.Int("postcodes", result.Postcodes),
		slog.Int("reassigned", result.Reassigned),
		slog.Int("postcodes_without_area", report.UnmatchedPostcodes))

	return result, nil
}
