package certsend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/certsend/internal/archive"
	"github.com/dmitrymomot/certsend/internal/batch"
	"github.com/dmitrymomot/certsend/internal/config"
	"github.com/dmitrymomot/certsend/internal/dispatch"
	"github.com/dmitrymomot/certsend/pkg/certificate"
	"github.com/dmitrymomot/certsend/pkg/mailer"
	"github.com/dmitrymomot/certsend/pkg/mailer/resend"
	"github.com/dmitrymomot/certsend/pkg/mailer/smtp"
	"github.com/dmitrymomot/certsend/pkg/roster"
	"github.com/dmitrymomot/certsend/pkg/storage"
)

const defaultShutdownTimeout = 10 * time.Second

// App runs certificate batches for one configured event.
// App is immutable after creation; all wiring is done via New().
type App struct {
	// Base context for signal handling (defaults to context.Background())
	baseCtx context.Context

	logger *slog.Logger
	out    io.Writer

	cfg       config.Config
	source    roster.Source
	gateway   dispatch.Gateway
	sender    mailer.Sender
	store     storage.Storage
	processor *batch.Processor

	failedOut string

	// Lifecycle
	shutdownTimeout time.Duration
	shutdownHooks   []func(ctx context.Context) error
}

// New validates cfg and wires the roster, renderer, mail gateway and the
// optional archive. Components supplied through options replace the ones
// built from cfg.
//
// Example:
//
//	app, err := certsend.New(cfg,
//	    certsend.WithLogger(log),
//	    certsend.WithFailedOutput("failed.csv"),
//	)
//	if err != nil {
//	    return err
//	}
//	_, err = app.Run()
//	return err
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		baseCtx:         context.Background(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:             os.Stdout,
		cfg:             cfg,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.source == nil {
		a.source = roster.NewExcelSource(cfg.ExcelFile,
			append(cfg.RosterOptions(), roster.WithLogger(a.logger))...)
	}

	if a.gateway == nil {
		if a.sender == nil {
			sender, err := newSender(cfg)
			if err != nil {
				return nil, err
			}
			a.sender = sender
		}
		dispatchOpts := []dispatch.Option{
			dispatch.WithLogger(a.logger),
			dispatch.WithOrganization(cfg.Organization),
			dispatch.WithEventDate(cfg.EventDate),
			dispatch.WithTags(mailer.Tags{"event": cfg.EventName}),
		}
		if cfg.ReplyTo != "" {
			dispatchOpts = append(dispatchOpts, dispatch.WithReplyTo(cfg.ReplyTo))
		}
		a.gateway = dispatch.New(a.sender, cfg.Mailer, dispatchOpts...)
	}

	batchOpts := []batch.Option{
		batch.WithLogger(a.logger),
		batch.WithCheckTimeout(cfg.CheckTimeout),
	}
	if a.store == nil && cfg.ArchiveEnabled() {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		a.logger.Info("certificate archive enabled",
			slog.String("bucket", store.Bucket()),
			slog.Bool("public_links", cfg.Storage.PublicURL != ""),
		)
		a.store = store
	}
	if a.store != nil {
		archiveOpts := []archive.Option{archive.WithLogger(a.logger)}
		if cfg.Storage.PublicURL != "" {
			archiveOpts = append(archiveOpts, archive.WithPublicLinks())
		}
		batchOpts = append(batchOpts, batch.WithArchive(archive.New(a.store, cfg.Archive, archiveOpts...)))
	}

	renderer := certificate.New(cfg.CertificateFolder, cfg.Event(),
		append(cfg.RendererOptions(), certificate.WithLogger(a.logger))...)
	a.processor = batch.New(a.source, renderer, a.gateway, cfg.Event(), batchOpts...)

	return a, nil
}

// newSender builds the mail provider selected by cfg.Provider.
func newSender(cfg config.Config) (mailer.Sender, error) {
	switch cfg.Provider {
	case config.ProviderResend:
		return resend.New(cfg.Resend), nil
	case config.ProviderSMTP:
		return smtp.New(cfg.SMTP)
	default:
		return nil, fmt.Errorf("%w: unknown mail provider %q", config.ErrInvalid, cfg.Provider)
	}
}
