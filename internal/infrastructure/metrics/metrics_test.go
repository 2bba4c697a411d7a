package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()

	before := testutil.ToFloat64(chunksStored.WithLabelValues("faq", "small_file"))
	r.DocumentIngested("text", "faq", "small_file", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(chunksStored.WithLabelValues("faq", "small_file")))

	before = testutil.ToFloat64(documentsSkipped.WithLabelValues("empty"))
	r.DocumentSkipped("empty")
	assert.Equal(t, before+1, testutil.ToFloat64(documentsSkipped.WithLabelValues("empty")))

	before = testutil.ToFloat64(retrievals.WithLabelValues("simple", "none"))
	r.Retrieved("simple", 0, 12*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(retrievals.WithLabelValues("simple", "none")))

	before = testutil.ToFloat64(queries.WithLabelValues("simple"))
	r.QueryAnswered("simple")
	assert.Equal(t, before+1, testutil.ToFloat64(queries.WithLabelValues("simple")))

	before = testutil.ToFloat64(llmFailures.WithLabelValues("timeout"))
	r.LLMFailed("timeout")
	assert.Equal(t, before+1, testutil.ToFloat64(llmFailures.WithLabelValues("timeout")))

	before = testutil.ToFloat64(actionsDetected.WithLabelValues("ai"))
	r.ActionDetected("ai")
	assert.Equal(t, before+1, testutil.ToFloat64(actionsDetected.WithLabelValues("ai")))
}

func TestHandler_ServesCollectors(t *testing.T) {
	NewRecorder().DocumentIngested("pdf", "technical", "large_file", 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `adaptiverag_documents_ingested_total{file_type="pdf"}`))
	assert.True(t, strings.Contains(body, "adaptiverag_chunks_stored_total"))
}
