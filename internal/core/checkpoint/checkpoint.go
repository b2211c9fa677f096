// Package checkpoint tracks load progress for each entity type.
//
// The checkpoint acts as a bookmark that remembers where the pipeline is in
// each entity type's upstream collection:
//   - RecordsProcessed: how many records the current traversal has handled
//   - APIOffset: the upstream pagination cursor consumed so far
//   - LastCompleted: stamped only when a full traversal finishes cleanly,
//     and used as the `since` filter on subsequent incremental runs
//
// State is a single JSON file, one entry per entity type, written with a
// write-temp-then-rename so a crash between a page and its checkpoint save
// can lose at most one page of work but never corrupt the file.
package checkpoint

import "time"

// Checkpoint is the durable progress marker for one entity type.
type Checkpoint struct {
	RecordsProcessed int        `json:"records_processed"`
	APIOffset        int        `json:"api_offset"`
	LastCompleted    *time.Time `json:"last_completed,omitempty"`
}

// DefaultPageSize is the page size assumed when deriving an API offset from a
// record count for legacy checkpoints that lack an explicit offset. Callers
// should always pass the offset explicitly; the derivation is a last resort.
const DefaultPageSize = 50
