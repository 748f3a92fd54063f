package operations

import (
	"time"
)

// operation Step identifiers
const (
	StageIDExpand = "expand"
	StageIDEnrich = "enrich"
	StageIDRank   = "rank"
)

// operation Step names
const (
	StageNameExpand = "Postcode Range Expansion"
	StageNameEnrich = "Snapshot Enrichment"
	StageNameRank   = "Price Ranking"
)

// Context keys for operation state
const (
	ContextKeyLookup   = "postcode_lookup"
	ContextKeyCombined = "combined_table"
	ContextKeyRanked   = "ranked_table"
)

// Metadata keys recorded on step states
const (
	MetadataRowsRead     = "rows_read"
	MetadataRowsWritten  = "rows_written"
	MetadataArtifacts    = "artifacts"
	MetadataJoinMisses   = "join_misses"
	MetadataUnrankedRows = "unranked_rows"
)

// Default timeouts
const (
	DefaultStageTimeout  = 30 * time.Minute
	DefaultExpandTimeout = 5 * time.Minute
	DefaultEnrichTimeout = 30 * time.Minute
	DefaultRankTimeout   = 10 * time.Minute
)

// OperationRequest represents a request to execute an operation
type OperationRequest struct {
	ID string `json:"id"`
	// Steps limits the run to the named steps. Empty runs every step.
	Steps []string `json:"steps,omitempty"`
}

// OperationResponse represents the response from an operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
