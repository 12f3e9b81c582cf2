// Package resolution provides the application service that turns CGSmiles
// notations into resolution reports. It is the single entry point used by
// the HTTP handlers and the CLI.
package resolution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/turtacn/cgsmiles/internal/config"
	"github.com/turtacn/cgsmiles/internal/domain/bonding"
	"github.com/turtacn/cgsmiles/internal/domain/cgsmiles"
	"github.com/turtacn/cgsmiles/internal/domain/molgraph"
	"github.com/turtacn/cgsmiles/internal/infrastructure/database/redis"
	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cgsmiles/pkg/errors"
	"github.com/turtacn/cgsmiles/pkg/types/molecule"
)

// Service defines the resolution use cases.
type Service interface {
	Resolve(ctx context.Context, req *molecule.ResolveRequest) (*molecule.ResolveResponse, error)
	Validate(ctx context.Context, req *molecule.ValidateRequest) (*molecule.ValidateResponse, error)
	Templates(ctx context.Context, notation string) ([]molecule.TemplateDTO, error)
}

type service struct {
	resolver *cgsmiles.Resolver
	cache    redis.ResultCache
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// Option configures NewService.
type Option func(*service)

// WithResultCache puts cache in front of Resolve.
func WithResultCache(cache redis.ResultCache) Option {
	return func(s *service) { s.cache = cache }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *service) { s.metrics = m }
}

// NewService creates the resolution service.
func NewService(resolver *cgsmiles.Resolver, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &service{
		resolver: resolver,
		logger:   logger.Named("resolution"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewResolver builds a domain resolver from cfg. With a shared template
// cache, every lookup is reported to metrics.
func NewResolver(cfg config.ResolverConfig, metrics *prometheus.AppMetrics) *cgsmiles.Resolver {
	opts := []cgsmiles.Option{
		cgsmiles.WithMaxRepeat(cfg.MaxRepeat),
		cgsmiles.WithMaxInstances(cfg.MaxInstances),
		cgsmiles.WithMaxAtoms(cfg.MaxAtoms),
		cgsmiles.WithMaxNotationLength(cfg.MaxNotationLength),
	}
	if cfg.ShareTemplateCache {
		cache := cgsmiles.NewTemplateCache(func(hit bool) {
			prometheus.RecordTemplateCacheAccess(metrics, hit)
		})
		opts = append(opts, cgsmiles.WithTemplateCache(cache))
	}
	return cgsmiles.NewResolver(opts...)
}

func (s *service) Resolve(ctx context.Context, req *molecule.ResolveRequest) (*molecule.ResolveResponse, error) {
	start := time.Now()
	if req == nil || req.Notation == "" {
		return nil, errors.InvalidParam("notation is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "resolution cancelled")
	}

	id := uuid.New().String()
	log := s.logger.WithContext(ctx).With(logging.String(logging.FieldResolutionID, id))

	var (
		resp   *molecule.ResolveResponse
		err    error
		cached bool
	)
	if s.cache != nil {
		resp, cached, err = s.resolveCached(ctx, req.Notation)
	} else {
		resp, err = s.resolve(req.Notation)
	}
	elapsed := time.Since(start)
	if err != nil {
		s.fail(log, "resolve", err, elapsed)
		return nil, err
	}

	resp.ResolutionID = id
	resp.Cached = cached
	unconsumed := 0
	for _, l := range resp.Unconsumed {
		unconsumed += len(l.Descriptors)
	}
	prometheus.RecordResolution(s.metrics, elapsed, len(resp.Molecule.Atoms), len(resp.Meta.Nodes), unconsumed)
	log.Info("notation resolved",
		logging.Int("meta_nodes", len(resp.Meta.Nodes)),
		logging.Int("atoms", len(resp.Molecule.Atoms)),
		logging.Int("bonds", len(resp.Molecule.Bonds)),
		logging.Int("unconsumed", unconsumed),
		logging.Bool("cached", cached),
		logging.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	return resp, nil
}

func (s *service) resolveCached(ctx context.Context, notation string) (*molecule.ResolveResponse, bool, error) {
	loaded := false
	var out molecule.ResolveResponse
	err := s.cache.GetOrLoad(ctx, notation, &out, func(context.Context) (interface{}, error) {
		loaded = true
		return s.resolve(notation)
	})
	if err != nil {
		return nil, false, err
	}
	return &out, !loaded, nil
}

func (s *service) resolve(notation string) (*molecule.ResolveResponse, error) {
	meta, mol, err := s.resolver.Resolve(notation)
	if err != nil {
		return nil, err
	}
	resp := BuildResolveResponse(notation, meta, mol)
	return &resp, nil
}

func (s *service) Validate(ctx context.Context, req *molecule.ValidateRequest) (*molecule.ValidateResponse, error) {
	start := time.Now()
	if req == nil || req.Notation == "" {
		return nil, errors.InvalidParam("notation is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "validation cancelled")
	}
	log := s.logger.WithContext(ctx)

	ref, err := s.resolver.Validate(req.Notation)
	if err != nil {
		s.fail(log, "validate", err, time.Since(start))
		return nil, err
	}
	n, err := cgsmiles.ParseNotation(req.Notation)
	if err != nil {
		return nil, err
	}

	resp := &molecule.ValidateResponse{
		Valid:     true,
		MetaNodes: make([]string, len(ref.Nodes)),
		MetaEdges: make([][2]int, len(ref.Edges)),
		Fragments: make([]string, len(n.Fragments)),
	}
	for i, node := range ref.Nodes {
		resp.MetaNodes[i] = node.Name
	}
	for i, e := range ref.Edges {
		resp.MetaEdges[i] = [2]int{e.From, e.To}
	}
	for i, f := range n.Fragments {
		resp.Fragments[i] = f.Name
	}

	elapsed := time.Since(start)
	prometheus.RecordValidation(s.metrics, elapsed)
	log.Debug("notation validated",
		logging.Int("meta_nodes", len(resp.MetaNodes)),
		logging.Int("meta_edges", len(resp.MetaEdges)),
		logging.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	return resp, nil
}

func (s *service) Templates(ctx context.Context, notation string) ([]molecule.TemplateDTO, error) {
	if notation == "" {
		return nil, errors.InvalidParam("notation is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	templates, err := s.resolver.Templates(notation)
	if err != nil {
		s.fail(s.logger.WithContext(ctx), "templates", err, 0)
		return nil, err
	}
	out := make([]molecule.TemplateDTO, len(templates))
	for i, t := range templates {
		out[i] = BuildTemplateDTO(t)
	}
	return out, nil
}

// fail records a failed operation. Client errors log at Warn, the rest at Error.
func (s *service) fail(log logging.Logger, op string, err error, elapsed time.Duration) {
	code := errors.GetCode(err)
	prometheus.RecordOperationFailure(s.metrics, op, string(code), elapsed)
	fields := []logging.Field{
		logging.String("operation", op),
		logging.String(logging.FieldErrorCode, string(code)),
		logging.Err(err),
	}
	if errors.IsClientError(code) {
		log.Warn("notation rejected", fields...)
		return
	}
	log.Error("operation failed", fields...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Conversion
// ─────────────────────────────────────────────────────────────────────────────

// BuildResolveResponse converts a resolution into its transport document.
func BuildResolveResponse(notation string, meta *cgsmiles.MetaMolecule, mol *molgraph.Graph) molecule.ResolveResponse {
	nodeOf := make(map[int]int, mol.NumAtoms())
	nodes := make([]molecule.MetaNodeDTO, len(meta.Nodes))
	for i, n := range meta.Nodes {
		ids := n.Graph.AtomIDs()
		for _, id := range ids {
			nodeOf[id] = n.ID
		}
		nodes[i] = molecule.MetaNodeDTO{ID: n.ID, Fragment: n.FragName, AtomIDs: ids}
	}

	edges := make([]molecule.MetaEdgeDTO, len(meta.Edges))
	for i, e := range meta.Edges {
		edges[i] = molecule.MetaEdgeDTO{
			From:       e.From,
			To:         e.To,
			SourceAtom: e.SourceAtom,
			TargetAtom: e.TargetAtom,
			Consumed:   [2]string{e.Consumed[0].String(), e.Consumed[1].String()},
		}
	}

	atoms := make([]molecule.AtomDTO, 0, mol.NumAtoms())
	for _, a := range mol.Atoms() {
		atoms = append(atoms, molecule.AtomDTO{
			ID:       a.ID,
			Element:  a.Element,
			Aromatic: a.Aromatic,
			Charge:   a.Charge,
			MetaNode: nodeOf[a.ID],
			Bonding:  bonding.Strings(a.Bonding),
		})
	}

	bonds := make([]molecule.BondDTO, 0, mol.NumBonds())
	for _, b := range mol.Bonds() {
		bonds = append(bonds, molecule.BondDTO{A: b.A, B: b.B, Order: b.Order, Aromatic: b.Aromatic})
	}

	var leftovers []molecule.LeftoverDTO
	for _, l := range meta.Unconsumed() {
		leftovers = append(leftovers, molecule.LeftoverDTO{
			MetaNode:    l.Node,
			Atom:        l.Atom,
			Descriptors: bonding.Strings(l.Descriptors),
		})
	}

	return molecule.ResolveResponse{
		Notation: notation,
		Meta:     molecule.MetaMoleculeDTO{Nodes: nodes, Edges: edges},
		Molecule: molecule.MoleculeDTO{
			Formula: molecule.HillFormula(mol.Elements()),
			Atoms:   atoms,
			Bonds:   bonds,
		},
		Unconsumed: leftovers,
	}
}

// BuildTemplateDTO summarizes one parsed dictionary entry.
func BuildTemplateDTO(t cgsmiles.Template) molecule.TemplateDTO {
	dto := molecule.TemplateDTO{
		Name:    t.Name,
		SMILES:  t.SMILES,
		Formula: molecule.HillFormula(t.Graph.Elements()),
		Atoms:   t.Graph.NumAtoms(),
		Bonds:   t.Graph.NumBonds(),
	}
	for _, a := range t.Graph.Atoms() {
		if a.HasDescriptors() {
			dto.Descriptors = append(dto.Descriptors, molecule.AtomDescriptorsDTO{
				Atom:        a.ID,
				Element:     a.Element,
				Descriptors: bonding.Strings(a.Bonding),
			})
		}
	}
	return dto
}
