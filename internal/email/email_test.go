package email_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobextract/internal/domain"
	"jobextract/internal/email"
	"jobextract/internal/email/noop"
	"jobextract/internal/email/ses"
	"jobextract/internal/logger"
)

func sampleReport() *domain.BatchReport {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.BatchReport{
		BatchID:          uuid.MustParse("12345678-1234-1234-1234-123456789abc"),
		StartedAt:        start,
		FinishedAt:       start.Add(1500 * time.Millisecond),
		Documents:        3,
		Records:          7,
		SkippedDocuments: []string{"in/bad<1>.txt: document contains binary content"},
		DroppedRecords:   []string{"in/x.json[2]: position"},
		FieldWarnings:    2,
	}
}

func TestRender(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, "jobextract batch 12345678: 1 skipped documents, 1 dropped records", email.Subject(r))

	text := email.TextBody(r)
	assert.Contains(t, text, "Documents: 3\nRecords: 7\nField warnings: 2")
	assert.Contains(t, text, "Skipped documents (1):\n  - in/bad<1>.txt")
	assert.Contains(t, text, "(1.5s)")

	html := email.HTMLBody(r)
	assert.Contains(t, html, "<li>in/bad&lt;1&gt;.txt")
	assert.NotContains(t, html, "bad<1>")
}

func TestRender_CapsLongLists(t *testing.T) {
	r := sampleReport()
	r.DroppedRecords = nil
	for i := 0; i < 60; i++ {
		r.DroppedRecords = append(r.DroppedRecords, fmt.Sprintf("f.json[%d]", i))
	}
	text := email.TextBody(r)
	assert.Contains(t, text, "... and 10 more")
	assert.NotContains(t, text, "f.json[50]")
}

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESSender(t *testing.T) {
	client := &fakeSES{}
	sender, err := ses.NewSESSenderWithClient(client, "noreply@example.com", "jobextract", []string{"ops@example.com"})
	require.NoError(t, err)

	require.NoError(t, sender.SendBatchReport(context.Background(), sampleReport()))
	assert.Equal(t, "jobextract <noreply@example.com>", *client.in.FromEmailAddress)
	assert.Equal(t, []string{"ops@example.com"}, client.in.Destination.ToAddresses)
	assert.True(t, strings.HasPrefix(*client.in.Content.Simple.Subject.Data, "jobextract batch"))

	client.err = errors.New("throttled")
	assert.ErrorContains(t, sender.SendBatchReport(context.Background(), sampleReport()), "throttled")

	_, err = ses.NewSESSenderWithClient(client, "a@b", "x", nil)
	assert.Error(t, err)
}

func TestNoopSender_Logs(t *testing.T) {
	var buf bytes.Buffer
	sender := noop.NewNoopSender(logger.New(&buf, "info", "json"))
	require.NoError(t, sender.SendBatchReport(context.Background(), sampleReport()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "batch report", entry["msg"])
	assert.Equal(t, float64(7), entry["records"])
	assert.Equal(t, float64(1), entry["dropped_records"])
}
