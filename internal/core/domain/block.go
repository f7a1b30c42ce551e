package domain

// BlockInfo is the cached metadata of one block. Block timestamps never
// change once mined, so a BlockInfo is immutable after first fetch.
type BlockInfo struct {
	Height    uint64
	Timestamp uint64
}
