package metrics

import "sync/atomic"

// Collector counts operation outcomes for the /metrics endpoint.
type Collector struct {
	mutationSuccess      int64
	mutationFailed       int64
	concurrencyExhausted int64
	pushSuccess          int64
	pushFailed           int64
	mergeApplied         int64
	mergeSkipped         int64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) RecordMutationSuccess() {
	atomic.AddInt64(&c.mutationSuccess, 1)
}

func (c *Collector) RecordMutationFailure() {
	atomic.AddInt64(&c.mutationFailed, 1)
}

func (c *Collector) RecordConcurrencyExhausted() {
	atomic.AddInt64(&c.concurrencyExhausted, 1)
}

func (c *Collector) RecordPushSuccess() {
	atomic.AddInt64(&c.pushSuccess, 1)
}

func (c *Collector) RecordPushFailure() {
	atomic.AddInt64(&c.pushFailed, 1)
}

func (c *Collector) RecordMergeResult(applied, skipped int) {
	atomic.AddInt64(&c.mergeApplied, int64(applied))
	atomic.AddInt64(&c.mergeSkipped, int64(skipped))
}

type Stats struct {
	MutationSuccess      int64 `json:"mutation_success"`
	MutationFailed       int64 `json:"mutation_failed"`
	ConcurrencyExhausted int64 `json:"concurrency_exhausted"`
	PushSuccess          int64 `json:"push_success"`
	PushFailed           int64 `json:"push_failed"`
	MergeApplied         int64 `json:"merge_applied"`
	MergeSkipped         int64 `json:"merge_skipped"`
}

func (c *Collector) GetStats() Stats {
	return Stats{
		MutationSuccess:      atomic.LoadInt64(&c.mutationSuccess),
		MutationFailed:       atomic.LoadInt64(&c.mutationFailed),
		ConcurrencyExhausted: atomic.LoadInt64(&c.concurrencyExhausted),
		PushSuccess:          atomic.LoadInt64(&c.pushSuccess),
		PushFailed:           atomic.LoadInt64(&c.pushFailed),
		MergeApplied:         atomic.LoadInt64(&c.mergeApplied),
		MergeSkipped:         atomic.LoadInt64(&c.mergeSkipped),
	}
}
