package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/projects", "200"))

	RecordAPIRequest(http.MethodGet, "/api/projects", http.StatusOK, 12*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/projects", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))

	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("project_stats"))

	RecordDBQuery("project_stats", time.Millisecond, nil)
	assert.Equal(t, before, testutil.ToFloat64(DBQueryErrors.WithLabelValues("project_stats")))

	RecordDBQuery("project_stats", time.Millisecond, errors.New("connection refused"))
	assert.Equal(t, before+1, testutil.ToFloat64(DBQueryErrors.WithLabelValues("project_stats")))
}

func TestRecordContactSubmission(t *testing.T) {
	for _, outcome := range []string{OutcomeDelivered, OutcomeSpam, OutcomeInvalid, OutcomeDeliveryFailed} {
		before := testutil.ToFloat64(ContactSubmissions.WithLabelValues(outcome))
		RecordContactSubmission(outcome)
		assert.Equal(t, before+1, testutil.ToFloat64(ContactSubmissions.WithLabelValues(outcome)), outcome)
	}
}
