package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certsend/internal/batch"
)

func init() {
	color.NoColor = true
}

func outcome(name, id, email string, status batch.Status, reason string) batch.Outcome {
	return batch.Outcome{Name: name, Identifier: id, Email: email, Status: status, Reason: reason}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("counts and failed details in order", func(t *testing.T) {
		t.Parallel()
		outcomes := []batch.Outcome{
			outcome("Asha", "R1", "a@x.com", batch.StatusSuccess, "Certificate sent to a@x.com"),
			outcome("", "R2", "b@x.com", batch.StatusFailed, batch.ReasonMissingData),
			outcome("Chen", "R3", "c@x.com", batch.StatusFailed, "mailbox full"),
		}

		r := Summarize(outcomes)
		require.Equal(t, Report{
			Total:        3,
			SuccessCount: 1,
			FailedCount:  2,
			FailedDetails: []FailedDetail{
				{Name: "", Email: "b@x.com", Reason: batch.ReasonMissingData},
				{Name: "Chen", Email: "c@x.com", Reason: "mailbox full"},
			},
		}, r)
	})

	t.Run("empty run", func(t *testing.T) {
		t.Parallel()
		r := Summarize(nil)
		require.Zero(t, r.Total)
		require.Empty(t, r.FailedDetails)
	})

	t.Run("totals always add up", func(t *testing.T) {
		t.Parallel()
		faker := gofakeit.New(11)
		outcomes := make([]batch.Outcome, 0, 100)
		for i := range 100 {
			status := batch.StatusSuccess
			if faker.Bool() {
				status = batch.StatusFailed
			}
			outcomes = append(outcomes, outcome(faker.Name(), fmt.Sprintf("R%d", i), faker.Email(), status, faker.Sentence(3)))
		}

		r := Summarize(outcomes)
		require.Equal(t, len(outcomes), r.Total)
		require.Equal(t, r.Total, r.SuccessCount+r.FailedCount)
		require.Len(t, r.FailedDetails, r.FailedCount)
		require.Len(t, Failed(outcomes), r.FailedCount)
	})
}

func TestFailed(t *testing.T) {
	t.Parallel()

	outcomes := []batch.Outcome{
		outcome("Asha", "R1", "a@x.com", batch.StatusFailed, "mailbox full"),
		outcome("Ben", "R2", "b@x.com", batch.StatusSuccess, "ok"),
		outcome("Chen", "R3", "c@x.com", batch.StatusFailed, "timeout"),
	}

	failed := Failed(outcomes)
	require.Equal(t, []batch.Outcome{outcomes[0], outcomes[2]}, failed)

	failed[0].Name = "changed"
	require.Equal(t, "Asha", outcomes[0].Name)
}

func TestReport_Print(t *testing.T) {
	t.Parallel()

	t.Run("lists failures with unknown placeholders", func(t *testing.T) {
		t.Parallel()
		r := Summarize([]batch.Outcome{
			outcome("Asha", "R1", "a@x.com", batch.StatusSuccess, "Certificate sent to a@x.com"),
			outcome("", "R2", "", batch.StatusFailed, batch.ReasonMissingData),
			outcome("Chen", "R3", "c@x.com", batch.StatusFailed, "mailbox full"),
		})

		var buf bytes.Buffer
		require.NoError(t, r.Print(&buf))

		out := buf.String()
		require.Contains(t, out, "CERTIFICATE SENDING REPORT")
		require.Contains(t, out, strings.Repeat("=", 50))
		require.Contains(t, out, "Total Participants: 3\n")
		require.Contains(t, out, "Successfully Sent: 1\n")
		require.Contains(t, out, "Failed: 2\n")
		require.Contains(t, out, "Failed Emails:\n")
		require.Contains(t, out, "- Unknown (Unknown): Missing required data\n")
		require.Contains(t, out, "- Chen (c@x.com): mailbox full\n")
		require.Less(t, strings.Index(out, "Unknown (Unknown)"), strings.Index(out, "Chen (c@x.com)"))
	})

	t.Run("omits failure section when all succeed", func(t *testing.T) {
		t.Parallel()
		r := Summarize([]batch.Outcome{
			outcome("Asha", "R1", "a@x.com", batch.StatusSuccess, "ok"),
		})

		var buf bytes.Buffer
		require.NoError(t, r.Print(&buf))
		require.Contains(t, buf.String(), "Failed: 0\n")
		require.NotContains(t, buf.String(), "Failed Emails:")
	})

	t.Run("propagates write errors", func(t *testing.T) {
		t.Parallel()
		err := Summarize(nil).Print(failingWriter{})
		require.Error(t, err)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteFailedCSV(t *testing.T) {
	t.Parallel()

	outcomes := []batch.Outcome{
		outcome("Asha", "R1", "a@x.com", batch.StatusSuccess, "ok"),
		outcome("Ben, Jr.", "R2", "b@x.com", batch.StatusFailed, `550 "no such user"`),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFailedCSV(&buf, outcomes))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"name", "identifier", "email", "reason"},
		{"Ben, Jr.", "R2", "b@x.com", `550 "no such user"`},
	}, rows)
}
