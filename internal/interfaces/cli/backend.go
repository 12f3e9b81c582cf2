package cli

import (
	"context"
	"fmt"

	"github.com/turtacn/cgsmiles/internal/application/resolution"
	"github.com/turtacn/cgsmiles/internal/config"
	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cgsmiles/pkg/client"
	"github.com/turtacn/cgsmiles/pkg/types/molecule"
)

// Backend runs the three notation operations. *client.Client satisfies it
// directly; NewLocalBackend adapts an in-process resolution.Service.
type Backend interface {
	Resolve(ctx context.Context, notation string) (*molecule.ResolveResponse, error)
	Validate(ctx context.Context, notation string) (*molecule.ValidateResponse, error)
	Fragments(ctx context.Context, notation string) ([]molecule.TemplateDTO, error)
}

var _ Backend = (*client.Client)(nil)

type localBackend struct {
	svc resolution.Service
}

// NewLocalBackend wraps svc as a Backend.
func NewLocalBackend(svc resolution.Service) Backend {
	return &localBackend{svc: svc}
}

func (b *localBackend) Resolve(ctx context.Context, notation string) (*molecule.ResolveResponse, error) {
	return b.svc.Resolve(ctx, &molecule.ResolveRequest{Notation: notation})
}

func (b *localBackend) Validate(ctx context.Context, notation string) (*molecule.ValidateResponse, error) {
	return b.svc.Validate(ctx, &molecule.ValidateRequest{Notation: notation})
}

func (b *localBackend) Fragments(ctx context.Context, notation string) ([]molecule.TemplateDTO, error) {
	return b.svc.Templates(ctx, notation)
}

// DefaultBackend talks to the apiserver when --server is set and resolves
// in-process otherwise.
func DefaultBackend(cfg *config.Config, opts *RootOptions, logger logging.Logger) (Backend, error) {
	if opts.ServerAddr != "" {
		c, err := client.NewClient(opts.ServerAddr,
			client.WithTimeout(opts.Timeout),
			client.WithLogger(clientLogger{logger.Named("client")}),
		)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	svc := resolution.NewService(resolution.NewResolver(cfg.Resolver, nil), logger)
	return NewLocalBackend(svc), nil
}

// clientLogger adapts logging.Logger to the printf-style client.Logger.
type clientLogger struct {
	l logging.Logger
}

func (c clientLogger) Debugf(format string, args ...interface{}) { c.l.Debug(fmt.Sprintf(format, args...)) }
func (c clientLogger) Infof(format string, args ...interface{})  { c.l.Info(fmt.Sprintf(format, args...)) }
func (c clientLogger) Errorf(format string, args ...interface{}) { c.l.Error(fmt.Sprintf(format, args...)) }
