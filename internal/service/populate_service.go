package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/dto"
	"github.com/tvgw-tennis/winterplan-api/internal/models"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
)

type planReader interface {
	ListAll(ctx context.Context) ([]models.PlanRow, error)
}

type planWriter interface {
	BulkInsertWithTx(ctx context.Context, tx *sqlx.Tx, rows []models.PlanRow) error
	DeleteAllWithTx(ctx context.Context, tx *sqlx.Tx) error
}

type txStarter interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// PopulateService fills open catalog slots with legal player groups and
// stages the result as a reviewable proposal.
type PopulateService struct {
	ref       *Reference
	eval      *Evaluator
	plans     planReader
	writer    planWriter
	tx        txStarter
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	store     *populateStore
}

// PopulateConfig governs proposal lifetime.
type PopulateConfig struct {
	ProposalTTL time.Duration
}

// NewPopulateService wires the slot filler.
func NewPopulateService(ref *Reference, plans planReader, writer planWriter, tx txStarter, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg PopulateConfig) *PopulateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &PopulateService{
		ref:       ref,
		eval:      NewEvaluator(ref),
		plans:     plans,
		writer:    writer,
		tx:        tx,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		store:     newPopulateStore(cfg.ProposalTTL),
	}
}

// Populate walks every open catalog slot of the season in date order and
// fills it when a fully legal group exists. The same inputs always produce
// the same proposal.
func (s *PopulateService) Populate(ctx context.Context, req dto.PopulateRequest) (*dto.PopulateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid populate payload")
	}

	var rows []models.PlanRow
	if !req.FromScratch {
		var err error
		rows, err = s.plans.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing plan")
		}
	}

	existing, _ := ParsePlan(rows, s.ref)
	occupied := make(map[string]bool, len(existing))
	for _, a := range existing {
		if a.OnCatalog {
			occupied[slotInstanceKey(a.Date, a.Slot.Code)] = true
		}
	}

	planCtx := NewPlanContext(existing)
	var filled []models.Assignment
	var skipped []dto.SkippedSlot
	remaining := 0

	for _, inst := range SeasonSlots(s.ref) {
		if occupied[slotInstanceKey(inst.Date, inst.Slot.Code)] {
			continue
		}
		if req.MaxSlots > 0 && len(filled) >= req.MaxSlots {
			remaining++
			continue
		}
		keys, reason := s.selectForSlot(inst, planCtx)
		if reason != "" {
			skipped = append(skipped, dto.SkippedSlot{
				Date:   inst.Date.Format("2006-01-02"),
				Slot:   inst.Slot.Code,
				Reason: reason,
			})
			continue
		}
		a := s.buildAssignment(inst, keys)
		planCtx.Commit(a)
		filled = append(filled, a)
	}

	proposal := populateProposal{
		ID:          uuid.NewString(),
		FromScratch: req.FromScratch,
		Assignments: filled,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	if s.metrics != nil {
		s.metrics.ObservePopulate(len(filled), len(skipped))
	}
	s.logger.Info("plan populated",
		zap.Int("filled", len(filled)),
		zap.Int("skipped", len(skipped)),
		zap.Bool("from_scratch", req.FromScratch),
	)

	resp := &dto.PopulateResponse{
		ProposalID: proposal.ID,
		Filled:     make([]dto.FilledSlot, 0, len(filled)),
		Skipped:    skipped,
		Remaining:  remaining,
	}
	for _, a := range filled {
		resp.Filled = append(resp.Filled, dto.FilledSlot{
			Date:    a.Date.Format("2006-01-02"),
			Weekday: models.WeekdayName(a.Slot.Weekday),
			Slot:    a.Slot.Code,
			Type:    string(a.Slot.MatchType),
			Players: a.Players,
		})
	}
	return resp, nil
}

// Save persists a staged proposal into the plan table.
func (s *PopulateService) Save(ctx context.Context, req dto.SavePlanRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil || s.writer == nil {
		return 0, appErrors.Clone(appErrors.ErrInternal, "plan persistence is not configured")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if proposal.FromScratch {
		if err = s.writer.DeleteAllWithTx(ctx, tx); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear existing plan")
			return 0, err
		}
	}
	rows := RenderPlan(proposal.Assignments)
	if err = s.writer.BulkInsertWithTx(ctx, tx, rows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist plan rows")
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit plan transaction")
		return 0, err
	}

	s.store.Delete(req.ProposalID)
	s.logger.Info("plan proposal saved", zap.String("proposal_id", req.ProposalID), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// selectForSlot picks a fully legal group for one slot instance, or explains
// why none exists. Advisory rules never exclude a candidate.
func (s *PopulateService) selectForSlot(inst models.SlotInstance, planCtx *PlanContext) ([]string, string) {
	pool := s.orderedCandidates(inst, planCtx)
	if len(pool) == 0 {
		return nil, "no players allow this match type"
	}

	if inst.Slot.MatchType == models.MatchSingles {
		return s.selectSingles(inst, pool, planCtx)
	}
	return s.selectDoubles(inst, pool, planCtx)
}

// orderedCandidates filters by match-type preference and sorts by fairness:
// fewest season matches first, then fewest matches in the slot's week, then
// rank with unknown ranks last, then the normalized key as tie breaker.
func (s *PopulateService) orderedCandidates(inst models.SlotInstance, planCtx *PlanContext) []*models.Player {
	week := models.WeekOf(inst.Date)
	var pool []*models.Player
	for _, p := range s.ref.Players() {
		if p.Preference.Allows(inst.Slot.MatchType) {
			pool = append(pool, p)
		}
	}
	sort.Slice(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		sa, sb := planCtx.SeasonCount(a.Key), planCtx.SeasonCount(b.Key)
		if sa != sb {
			return sa < sb
		}
		wa, wb := planCtx.WeekCount(a.Key, week), planCtx.WeekCount(b.Key, week)
		if wa != wb {
			return wa < wb
		}
		if a.RankKnown() != b.RankKnown() {
			return a.RankKnown()
		}
		if a.RankKnown() && a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Key < b.Key
	})
	return pool
}

// selectSingles backtracks over first picks: a fair first choice may have no
// rank-compatible partner, in which case the next candidate gets the slot.
func (s *PopulateService) selectSingles(inst models.SlotInstance, pool []*models.Player, planCtx *PlanContext) ([]string, string) {
	blocked := map[models.RuleCode]bool{}
	legalFirst := 0
	for i, first := range pool {
		if !s.legal(first.Key, inst, nil, planCtx, blocked) {
			continue
		}
		legalFirst++
		for j, second := range pool {
			if j == i {
				continue
			}
			if s.legal(second.Key, inst, []string{first.Key}, planCtx, blocked) {
				return []string{first.Key, second.Key}, ""
			}
		}
	}
	if legalFirst == 0 {
		return nil, skipReason("no legal candidates", blocked)
	}
	return nil, skipReason("no legal pairing among candidates", blocked)
}

func (s *PopulateService) selectDoubles(inst models.SlotInstance, pool []*models.Player, planCtx *PlanContext) ([]string, string) {
	blocked := map[models.RuleCode]bool{}
	var picked []string
	for _, p := range pool {
		if s.legal(p.Key, inst, picked, planCtx, blocked) {
			picked = append(picked, p.Key)
			if len(picked) == inst.Slot.Headcount() {
				return picked, ""
			}
		}
	}
	return nil, skipReason(fmt.Sprintf("only %d of %d legal players", len(picked), inst.Slot.Headcount()), blocked)
}

// legal records the hard rule codes that eliminated a candidate so the skip
// reason can cite every exclusion cause.
func (s *PopulateService) legal(key string, inst models.SlotInstance, others []string, planCtx *PlanContext, blocked map[models.RuleCode]bool) bool {
	hits := s.eval.EvaluatePlayer(key, inst.Date, inst.Slot, others, planCtx, false)
	if Legal(hits) {
		return true
	}
	for _, h := range hits {
		if !h.Code.Advisory() {
			blocked[h.Code] = true
		}
	}
	return false
}

func skipReason(base string, blocked map[models.RuleCode]bool) string {
	if len(blocked) == 0 {
		return base
	}
	codes := make([]string, 0, len(blocked))
	for code := range blocked {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)
	return fmt.Sprintf("%s (blocked by %s)", base, strings.Join(codes, ", "))
}

func (s *PopulateService) buildAssignment(inst models.SlotInstance, keys []string) models.Assignment {
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key
		if p, ok := s.ref.Player(key); ok {
			names[i] = p.Name
		}
	}
	return models.Assignment{
		Date:       inst.Date,
		Slot:       inst.Slot,
		Players:    names,
		PlayerKeys: keys,
		OnCatalog:  true,
	}
}

// --- Proposal cache ---

type populateProposal struct {
	ID          string
	FromScratch bool
	Assignments []models.Assignment
	RequestedAt time.Time
}

type populateStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]populateProposal
}

func newPopulateStore(ttl time.Duration) *populateStore {
	return &populateStore{
		ttl:   ttl,
		items: make(map[string]populateProposal),
	}
}

func (s *populateStore) Save(p populateProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ID] = p
}

func (s *populateStore) Get(id string) (populateProposal, bool) {
	s.mu.RLock()
	p, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return populateProposal{}, false
	}
	if time.Since(p.RequestedAt) > s.ttl {
		s.Delete(id)
		return populateProposal{}, false
	}
	return p, true
}

func (s *populateStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
