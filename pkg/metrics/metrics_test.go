package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncrementMailSend(t *testing.T) {
	before := testutil.ToFloat64(MailSendCount.WithLabelValues("smtp.test", "success"))
	IncrementMailSend("smtp.test", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(MailSendCount.WithLabelValues("smtp.test", "success")))
}

func TestIncrementContactSubmission(t *testing.T) {
	before := testutil.ToFloat64(ContactSubmissionCount.WithLabelValues("sent"))
	IncrementContactSubmission("sent")
	IncrementContactSubmission("sent")
	assert.Equal(t, before+2, testutil.ToFloat64(ContactSubmissionCount.WithLabelValues("sent")))
}

func TestAddFetchedItems(t *testing.T) {
	before := testutil.ToFloat64(FetchedItemsCount)
	AddFetchedItems(3)
	assert.Equal(t, before+3, testutil.ToFloat64(FetchedItemsCount))
}

func TestRecordHTTPRequestDuration(t *testing.T) {
	RecordHTTPRequestDuration("POST", "/send-email/", "200", 5*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(HTTPRequestDuration, "http_request_duration_seconds"), 1)
}
