package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certsend/internal/dispatch"
	"github.com/dmitrymomot/certsend/pkg/certificate"
	"github.com/dmitrymomot/certsend/pkg/roster"
)

var testEvent = certificate.Event{
	Name:         "Go Workshop",
	Date:         "12 March 2025",
	Organization: "Acme Institute",
}

type reply struct {
	ok     bool
	reason string
}

// fakeGateway records deliveries and answers per recipient.
type fakeGateway struct {
	mu          sync.Mutex
	unreachable bool
	replies     map[string]reply
	onSend      func(dispatch.Delivery)
	deliveries  []dispatch.Delivery
	checks      int
}

func (g *fakeGateway) Send(_ context.Context, d dispatch.Delivery) (bool, string) {
	g.mu.Lock()
	g.deliveries = append(g.deliveries, d)
	onSend := g.onSend
	r, found := g.replies[d.Recipient]
	g.mu.Unlock()

	if onSend != nil {
		onSend(d)
	}
	if found {
		return r.ok, r.reason
	}
	return true, "Certificate sent to " + d.Recipient
}

func (g *fakeGateway) TestConnection(context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checks++
	return !g.unreachable
}

func (g *fakeGateway) sent() []dispatch.Delivery {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]dispatch.Delivery(nil), g.deliveries...)
}

type countingSource struct {
	roster.Source
	calls int
}

func (s *countingSource) Records(ctx context.Context) ([]roster.Record, error) {
	s.calls++
	return s.Source.Records(ctx)
}

type failingSource struct{ err error }

func (s failingSource) Records(context.Context) ([]roster.Record, error) {
	return nil, s.err
}

type panickingRenderer struct{}

func (panickingRenderer) RenderEvent(context.Context, string, string, certificate.Event) (string, error) {
	panic("renderer exploded")
}

type fakeArchive struct {
	err      error
	checkErr error
	uploads  []string
}

func (a *fakeArchive) Upload(_ context.Context, identifier, path string) (string, string, error) {
	a.uploads = append(a.uploads, identifier)
	if a.err != nil {
		return "", "", a.err
	}
	return "certificates/" + filepath.Base(path), "https://files.example.com/" + identifier, nil
}

func (a *fakeArchive) Check(context.Context) error {
	return a.checkErr
}

func newProcessor(t *testing.T, records []roster.Record, gw dispatch.Gateway, opts ...Option) (*Processor, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "certificates")
	return New(roster.StaticSource(records), certificate.New(dir, testEvent), gw, testEvent, opts...), dir
}

func artifacts(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestProcessAll_OneOutcomePerRecordInOrder(t *testing.T) {
	t.Parallel()

	faker := gofakeit.New(7)
	records := make([]roster.Record, 0, 40)
	for i := range 40 {
		rec := roster.Record{
			Name:       faker.Name(),
			Identifier: fmt.Sprintf("R%02d", i),
			Email:      faker.Email(),
		}
		if i%7 == 0 {
			rec.Email = "  "
		}
		records = append(records, rec)
	}

	p, _ := newProcessor(t, records, &fakeGateway{})
	outcomes, err := p.ProcessAll(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, len(records))
	for i, o := range outcomes {
		require.Equal(t, records[i].Identifier, o.Identifier)
	}
}

func TestProcessAll_MissingData(t *testing.T) {
	t.Parallel()

	records := []roster.Record{
		{Name: "", Identifier: "R1", Email: "a@x.com"},
		{Name: "Ben", Identifier: "   ", Email: "b@x.com"},
		{Name: "Chen", Identifier: "R3", Email: "\t"},
	}
	gw := &fakeGateway{}
	p, dir := newProcessor(t, records, gw)

	outcomes, err := p.ProcessAll(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		require.Equal(t, StatusFailed, o.Status)
		require.Equal(t, ReasonMissingData, o.Reason)
	}
	require.Equal(t, "", outcomes[1].Identifier)
	require.Empty(t, gw.sent())
	require.Empty(t, artifacts(t, dir))
}

func TestProcessAll_DistinctIdentifiersDistinctArtifacts(t *testing.T) {
	t.Parallel()

	p, dir := newProcessor(t, []roster.Record{
		{Name: "Asha", Identifier: "R1", Email: "a@x.com"},
		{Name: "Ben", Identifier: "R2", Email: "b@x.com"},
	}, &fakeGateway{})

	outcomes, err := p.ProcessAll(context.Background())
	require.NoError(t, err)
	require.True(t, outcomes[0].Succeeded())
	require.True(t, outcomes[1].Succeeded())
	require.ElementsMatch(t, []string{"R1.pdf", "R2.pdf"}, artifacts(t, dir))
}

func TestProcessAll_ReprocessingOverwritesArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	renderer := certificate.New(dir, testEvent)
	gw := &fakeGateway{}

	first := New(roster.StaticSource{{Name: "First Name", Identifier: "R1", Email: "a@x.com"}}, renderer, gw, testEvent)
	_, err := first.ProcessAll(context.Background())
	require.NoError(t, err)

	second := New(roster.StaticSource{{Name: "Second Name", Identifier: "R1", Email: "a@x.com"}}, renderer, gw, testEvent)
	_, err = second.ProcessAll(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "R1.pdf"))
	require.NoError(t, err)
	want, err := renderer.Document("Second Name", testEvent)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, []string{"R1.pdf"}, artifacts(t, dir))
}

func TestProcessAll_ConnectionFailure(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{unreachable: true}
	src := &countingSource{Source: roster.StaticSource{{Name: "Asha", Identifier: "R1", Email: "a@x.com"}}}
	dir := filepath.Join(t.TempDir(), "certificates")
	p := New(src, certificate.New(dir, testEvent), gw, testEvent)

	outcomes, err := p.ProcessAll(context.Background())
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.Empty(t, outcomes)
	require.Empty(t, artifacts(t, dir))
	require.Empty(t, gw.sent())
	require.Equal(t, 0, src.calls)
	require.Equal(t, 1, gw.checks)
}

func TestProcessAll_RosterUnavailable(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("%w: participants.xlsx", roster.ErrNotFound)
	gw := &fakeGateway{}
	p := New(failingSource{err: cause}, certificate.New(t.TempDir(), testEvent), gw, testEvent)

	outcomes, err := p.ProcessAll(context.Background())
	require.ErrorIs(t, err, ErrRosterUnavailable)
	require.ErrorIs(t, err, roster.ErrNotFound)
	require.Empty(t, outcomes)
	require.Equal(t, 1, gw.checks)
}

func TestProcessAll_MixedRoster(t *testing.T) {
	t.Parallel()

	p, dir := newProcessor(t, []roster.Record{
		{Name: "Asha", Identifier: "R1", Email: "a@x.com"},
		{Name: "", Identifier: "R2", Email: "b@x.com"},
	}, &fakeGateway{})

	outcomes, err := p.ProcessAll(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	require.Equal(t, StatusSuccess, outcomes[0].Status)
	require.Equal(t, "Certificate sent to a@x.com", outcomes[0].Reason)
	require.Equal(t, StatusFailed, outcomes[1].Status)
	require.Equal(t, ReasonMissingData, outcomes[1].Reason)
	require.Equal(t, []string{"R1.pdf"}, artifacts(t, dir))
}

func TestProcessAll_DispatchFailureKeepsArtifact(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{replies: map[string]reply{"a@x.com": {ok: false, reason: "mailbox full"}}}
	p, dir := newProcessor(t, []roster.Record{{Name: "Asha", Identifier: "R1", Email: "a@x.com"}}, gw)

	outcomes, err := p.ProcessAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusFailed, outcomes[0].Status)
	require.Equal(t, "mailbox full", outcomes[0].Reason)
	require.FileExists(t, filepath.Join(dir, "R1.pdf"))
}

func TestProcess_TrimsFieldsAndDelivers(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	p, dir := newProcessor(t, nil, gw)

	out := p.Process(context.Background(), roster.Record{Name: "  Asha ", Identifier: " R1 ", Email: " a@x.com "})
	require.Equal(t, Outcome{
		Name:       "Asha",
		Identifier: "R1",
		Email:      "a@x.com",
		Status:     StatusSuccess,
		Reason:     "Certificate sent to a@x.com",
	}, out)

	sent := gw.sent()
	require.Len(t, sent, 1)
	require.Equal(t, dispatch.Delivery{
		Recipient:  "a@x.com",
		Name:       "Asha",
		Attachment: filepath.Join(dir, "R1.pdf"),
		EventName:  "Go Workshop",
	}, sent[0])
}

func TestProcess_RenderFailureSkipsDispatch(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	p, _ := newProcessor(t, nil, gw)

	out := p.Process(context.Background(), roster.Record{Name: "Asha", Identifier: "2024/R1", Email: "a@x.com"})
	require.Equal(t, StatusFailed, out.Status)
	require.Equal(t, `certificate: invalid identifier: "2024/R1"`, out.Reason)
	require.Empty(t, gw.sent())
}

func TestProcess_UnsupportedNameFails(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	p, dir := newProcessor(t, nil, gw)

	out := p.Process(context.Background(), roster.Record{Name: "李小龍", Identifier: "R1", Email: "a@x.com"})
	require.Equal(t, StatusFailed, out.Status)
	require.Contains(t, out.Reason, "certificate: unsupported characters")
	require.Empty(t, gw.sent())
	require.NoFileExists(t, filepath.Join(dir, "R1.pdf"))
}

func TestProcessAll_PanicIsIsolated(t *testing.T) {
	t.Parallel()

	t.Run("renderer panic", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{}
		p := New(roster.StaticSource{
			{Name: "Asha", Identifier: "R1", Email: "a@x.com"},
			{Name: "Ben", Identifier: "R2", Email: "b@x.com"},
		}, panickingRenderer{}, gw, testEvent)

		outcomes, err := p.ProcessAll(context.Background())
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		for _, o := range outcomes {
			require.Equal(t, StatusFailed, o.Status)
			require.Equal(t, "renderer exploded", o.Reason)
		}
		require.Empty(t, gw.sent())
	})

	t.Run("gateway panic with error value", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{onSend: func(d dispatch.Delivery) {
			if d.Recipient == "a@x.com" {
				panic(errors.New("transport crashed"))
			}
		}}
		p, _ := newProcessor(t, []roster.Record{
			{Name: "Asha", Identifier: "R1", Email: "a@x.com"},
			{Name: "Ben", Identifier: "R2", Email: "b@x.com"},
		}, gw)

		outcomes, err := p.ProcessAll(context.Background())
		require.NoError(t, err)
		require.Equal(t, StatusFailed, outcomes[0].Status)
		require.Equal(t, "transport crashed", outcomes[0].Reason)
		require.Equal(t, "R1", outcomes[0].Identifier)
		require.Equal(t, StatusSuccess, outcomes[1].Status)
	})
}

func TestProcessAll_Interrupted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := &fakeGateway{onSend: func(dispatch.Delivery) { cancel() }}
	p, dir := newProcessor(t, []roster.Record{
		{Name: "Asha", Identifier: "R1", Email: "a@x.com"},
		{Name: "Ben", Identifier: "R2", Email: "b@x.com"},
	}, gw)

	outcomes, err := p.ProcessAll(ctx)
	require.ErrorIs(t, err, ErrInterrupted)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 1)
	require.Equal(t, StatusSuccess, outcomes[0].Status)
	require.Equal(t, []string{"R1.pdf"}, artifacts(t, dir))
}

func TestProcessAll_Archive(t *testing.T) {
	t.Parallel()

	t.Run("archived artifact is linked", func(t *testing.T) {
		t.Parallel()
		arch := &fakeArchive{}
		gw := &fakeGateway{}
		p, _ := newProcessor(t, []roster.Record{{Name: "Asha", Identifier: "R1", Email: "a@x.com"}}, gw, WithArchive(arch))

		outcomes, err := p.ProcessAll(context.Background())
		require.NoError(t, err)
		require.Equal(t, "certificates/R1.pdf", outcomes[0].ArchiveKey)
		require.Equal(t, "https://files.example.com/R1", gw.sent()[0].DownloadURL)
		require.Equal(t, []string{"R1"}, arch.uploads)
	})

	t.Run("archive failure does not change the outcome", func(t *testing.T) {
		t.Parallel()
		arch := &fakeArchive{err: errors.New("bucket gone")}
		gw := &fakeGateway{}
		p, _ := newProcessor(t, []roster.Record{{Name: "Asha", Identifier: "R1", Email: "a@x.com"}}, gw, WithArchive(arch))

		outcomes, err := p.ProcessAll(context.Background())
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, outcomes[0].Status)
		require.Empty(t, outcomes[0].ArchiveKey)
		require.Empty(t, gw.sent()[0].DownloadURL)
	})

	t.Run("unreachable archive does not abort", func(t *testing.T) {
		t.Parallel()
		arch := &fakeArchive{checkErr: errors.New("no such bucket")}
		p, _ := newProcessor(t, []roster.Record{{Name: "Asha", Identifier: "R1", Email: "a@x.com"}}, &fakeGateway{}, WithArchive(arch))

		report := p.Preflight(context.Background())
		require.NoError(t, report.Err())

		outcomes, err := p.ProcessAll(context.Background())
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
	})

	t.Run("archive is not touched for invalid records", func(t *testing.T) {
		t.Parallel()
		arch := &fakeArchive{}
		p, _ := newProcessor(t, []roster.Record{{Name: "", Identifier: "R1", Email: "a@x.com"}}, &fakeGateway{}, WithArchive(arch))

		_, err := p.ProcessAll(context.Background())
		require.NoError(t, err)
		require.Empty(t, arch.uploads)
	})
}

type checkingGateway struct {
	fakeGateway
	err error
}

func (g *checkingGateway) Check(context.Context) error { return g.err }

func TestPreflight_UsesGatewayCheckError(t *testing.T) {
	t.Parallel()

	cause := errors.New("535 authentication failed")
	p, _ := newProcessor(t, nil, &checkingGateway{err: cause})

	outcomes, err := p.ProcessAll(context.Background())
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.ErrorIs(t, err, cause)
	require.Empty(t, outcomes)
}
