package ports

// Metrics contadores de negocio. Lo implementa infrastructure/metrics.
type Metrics interface {
	QuotationsSent(result string, n int)
	ProposalRecorded(source string)
	AnalysisComputed(recommendation string)
	PurchaseOrdersIssued(mode string, n int)
	EmailsFetched(n int)
	EmailProcessed(status string)
	AICreditsConsumed(operation string, n int)
}

// NopMetrics descarta todo (tests y arranque sin métricas).
type NopMetrics struct{}

func (NopMetrics) QuotationsSent(string, int)       {}
func (NopMetrics) ProposalRecorded(string)          {}
func (NopMetrics) AnalysisComputed(string)          {}
func (NopMetrics) PurchaseOrdersIssued(string, int) {}
func (NopMetrics) EmailsFetched(int)                {}
func (NopMetrics) EmailProcessed(string)            {}
func (NopMetrics) AICreditsConsumed(string, int)    {}
