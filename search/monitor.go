package search

// QueryMonitor provides hooks to observe the query process.
// Implement this interface to track intermediate steps and results during a query.
// Hooks may be called from the query's goroutines; implementations must be safe for that.
type QueryMonitor interface {
	Start(req Request)
	AfterGraphSearch(matches int, err error)
	AfterSemanticSearch(hits []Hit, err error)
	Fused(items []ResultItem)
	Finish(resp *Response, err error)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Request)                     {}
func (n *noopMonitor) AfterGraphSearch(_ int, _ error)     {}
func (n *noopMonitor) AfterSemanticSearch(_ []Hit, _ error) {}
func (n *noopMonitor) Fused(_ []ResultItem)                {}
func (n *noopMonitor) Finish(_ *Response, _ error)         {}
