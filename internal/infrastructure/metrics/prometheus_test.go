package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheus_BusinessCounters(t *testing.T) {
	m := New("compras")
	m.QuotationsSent("ok", 2)
	m.QuotationsSent("failed", 1)
	m.ProposalRecorded("EMAIL")
	m.PurchaseOrdersIssued("OPTIMIZED", 3)
	m.EmailsFetched(4)
	m.AICreditsConsumed("email_classification", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.quotationsSent.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.proposalsRecorded.WithLabelValues("EMAIL")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ordersIssued.WithLabelValues("OPTIMIZED")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.emailsFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCreditsConsumed.WithLabelValues("email_classification")))
}

func TestPrometheus_HTTP(t *testing.T) {
	m := New("compras")
	m.InFlight(1)
	m.ObserveHTTP("GET", "/api/v1/suppliers", 200, 12*time.Millisecond)
	m.InFlight(-1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/suppliers", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	n, err := testutil.GatherAndCount(m.Registry, "compras_http_request_duration_ms")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
