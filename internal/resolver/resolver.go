// Package resolver maps free-text organization names to registry
// identifiers through the ROR affiliation API.
package resolver

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ror-cli/internal/model"
	"github.com/sells-group/ror-cli/pkg/ror"
)

// Resolver performs one paced registry lookup per name.
type Resolver struct {
	client ror.Client
	pacer  Pacer
	log    *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPacer replaces the default 50ms interval pacer.
func WithPacer(p Pacer) Option {
	return func(r *Resolver) {
		r.pacer = p
	}
}

// WithLogger sets the logger (default zap.L()).
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// New creates a Resolver backed by client.
func New(client ror.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client: client,
		pacer:  NewIntervalPacer(DefaultInterval),
		log:    zap.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up orgName and returns the best candidate's name and
// identifier. Any failure, non-200 status or empty result set yields an
// empty Resolution.
func (r *Resolver) Resolve(ctx context.Context, orgName string) model.Resolution {
	if err := r.pacer.Wait(ctx); err != nil {
		r.log.Warn("resolver: pacer wait aborted", zap.String("org", orgName), zap.Error(err))
		return model.Resolution{}
	}

	r.log.Info("query", zap.String("org", orgName))

	resp, err := r.client.MatchAffiliation(ctx, orgName)
	if err != nil {
		r.logMiss(orgName, err)
		return model.Resolution{}
	}

	best, ok := SelectBest(Candidates(resp))
	if !ok || best.ID == "" {
		r.log.Debug("resolver: no results", zap.String("org", orgName))
		return model.Resolution{}
	}

	r.log.Debug("resolver: matched",
		zap.String("org", orgName),
		zap.String("ror_id", best.ID),
		zap.String("name", best.Name),
		zap.Bool("chosen", best.Chosen),
	)
	return model.ResolutionFrom(best)
}

func (r *Resolver) logMiss(orgName string, err error) {
	var se *ror.StatusError
	switch {
	case errors.As(err, &se):
		r.log.Warn("resolver: lookup miss", zap.String("org", orgName), zap.Int("status", se.StatusCode))
	case eris.Is(err, ror.ErrUnparseable):
		r.log.Warn("resolver: unparseable response", zap.String("org", orgName), zap.Error(err))
	default:
		r.log.Warn("resolver: lookup failed", zap.String("org", orgName), zap.Error(err))
	}
}
