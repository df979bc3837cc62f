package leavepolicy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	leavepolicyerrors "go-hrpayroll/internal/leavepolicy/errors"
	"go-hrpayroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	ActivePolicyCacheKey = "leave_policy:active"
	activePolicyTTL      = 10 * time.Minute
)

// cacheIfNewerScript stores ARGV[1] unless the cached entry already holds
// version ARGV[2] or later, so a slow load never overwrites a newer save.
const cacheIfNewerScript = `
local current = redis.call('GET', KEYS[1])
if current then
  local ok, cached = pcall(cjson.decode, current)
  if ok and type(cached) == 'table' and tonumber(cached.version) ~= nil
    and tonumber(cached.version) >= tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`

// CacheObserver receives hit/miss notifications; *metrics.Metrics fits.
type CacheObserver interface {
	CacheLookup(cache string, hit bool)
}

// Provider hands out the active policy; leave and salary slip services depend
// on this rather than on the whole Service.
type Provider interface {
	Active(ctx context.Context) (Policy, error)
}

type Service interface {
	Provider
	Get(ctx context.Context) (PolicyResponse, error)
	Save(ctx context.Context, actorID string, req SavePolicyRequest) (PolicyResponse, bool, error)
	ListVersions(ctx context.Context) ([]PolicyResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	rdb     redis.Cmdable
	sf      *singleflight.Group
	metrics CacheObserver
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb redis.Cmdable, metrics CacheObserver, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavepolicy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavepolicy.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		metrics: metrics,
		logger:  l,
	}
}

// Active returns ErrPolicyNotFound until HR saves the first version.
func (s *service) Active(ctx context.Context) (Policy, error) {
	resp, err := s.latest(ctx)
	if err != nil {
		return Policy{}, err
	}
	return resp.toPolicy(), nil
}

func (s *service) latest(ctx context.Context) (PolicyResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, ActivePolicyCacheKey).Result(); err == nil {
			var resp PolicyResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				s.observe(true)
				return resp, nil
			}
		}
	}
	s.observe(false)

	// the shared load must not fail every waiter when the first caller
	// goes away
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(ActivePolicyCacheKey, func() (interface{}, error) {
		p, err := s.repo.FindLatest(loadCtx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, leavepolicyerrors.ErrPolicyNotFound
			}
			return nil, err
		}

		resp := mapToResponse(*p)
		if err := s.cacheIfNewer(loadCtx, resp); err != nil {
			s.logger.Warn("cache active leave policy failed", zap.Error(err))
		}
		return resp, nil
	})
	if err != nil {
		return PolicyResponse{}, err
	}

	return v.(PolicyResponse), nil
}

// Get mirrors Active but reports "not configured" as an empty policy.
func (s *service) Get(ctx context.Context) (PolicyResponse, error) {
	resp, err := s.latest(ctx)
	if errors.Is(err, leavepolicyerrors.ErrPolicyNotFound) {
		return PolicyResponse{LeaveTypes: []LeaveTypeResponse{}}, nil
	}
	return resp, err
}

// Save stores a new immutable version. The bool reports whether this was the
// first version ever configured.
func (s *service) Save(ctx context.Context, actorID string, req SavePolicyRequest) (PolicyResponse, bool, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("save leave policy requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.Int("leave_types", len(req.LeaveTypes)),
	)

	types := make([]LeaveType, 0, len(req.LeaveTypes))
	for _, t := range req.LeaveTypes {
		types = append(types, LeaveType{
			Type:              strings.TrimSpace(t.Type),
			Mode:              t.Mode,
			Frequency:         t.Frequency,
			MaxPerRequest:     t.MaxPerRequest,
			NormalDays:        t.NormalDays,
			AllowedAfterLimit: t.AllowedAfterLimit,
		})
	}
	if err := Validate(types); err != nil {
		return PolicyResponse{}, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("save leave policy begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PolicyResponse{}, false, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	version, err := qtx.NextVersion(ctx)
	if err != nil {
		s.logger.Error("save leave policy next version failed", zap.Error(err))
		return PolicyResponse{}, false, err
	}

	policy := &LeavePolicy{
		ID:         uuid.New(),
		Version:    version,
		CreatedBy:  parseUUIDPtr(actorID),
		CreatedAt:  time.Now().UTC(),
		LeaveTypes: make([]LeaveTypePolicy, 0, len(types)),
	}
	for _, t := range types {
		policy.LeaveTypes = append(policy.LeaveTypes, LeaveTypePolicy{
			ID:                uuid.New(),
			PolicyID:          policy.ID,
			Type:              t.Type,
			Mode:              t.Mode,
			Frequency:         t.Frequency,
			MaxPerRequest:     t.MaxPerRequest,
			NormalDays:        t.NormalDays,
			AllowedAfterLimit: t.AllowedAfterLimit,
		})
	}

	if err := qtx.Create(ctx, policy); err != nil {
		s.logger.Error("save leave policy persist failed", zap.Error(err))
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return PolicyResponse{}, false, leavepolicyerrors.ErrVersionConflict
		}
		return PolicyResponse{}, false, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("save leave policy commit failed", zap.String("request_id", rid), zap.Error(err))
		return PolicyResponse{}, false, err
	}

	resp := mapToResponse(*policy)
	s.publishActive(ctx, resp)

	s.logger.Info("save leave policy success",
		zap.String("request_id", rid),
		zap.String("policy_id", policy.ID.String()),
		zap.Int("version", version),
	)

	return resp, version == 1, nil
}

func (s *service) ListVersions(ctx context.Context) ([]PolicyResponse, error) {
	policies, err := s.repo.ListVersions(ctx)
	if err != nil {
		s.logger.Error("list leave policy versions failed", zap.Error(err))
		return nil, err
	}

	out := make([]PolicyResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, mapToResponse(p))
	}
	return out, nil
}

func (s *service) cacheIfNewer(ctx context.Context, resp PolicyResponse) error {
	if s.rdb == nil {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.rdb.Eval(ctx, cacheIfNewerScript, []string{ActivePolicyCacheKey},
		string(data),
		strconv.Itoa(resp.Version),
		strconv.FormatInt(activePolicyTTL.Milliseconds(), 10),
	).Err()
}

// publishActive puts a freshly saved version in the cache. When that fails
// the entry is dropped instead, so readers fall back to the database.
func (s *service) publishActive(ctx context.Context, resp PolicyResponse) {
	if s.rdb == nil {
		return
	}
	err := s.cacheIfNewer(ctx, resp)
	if err == nil {
		return
	}
	s.logger.Warn("cache saved leave policy failed", zap.Int("version", resp.Version), zap.Error(err))

	if err := s.rdb.Del(ctx, ActivePolicyCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate leave policy cache",
			zap.Error(err),
			zap.String("key", ActivePolicyCacheKey),
		)
	}
}

func (s *service) observe(hit bool) {
	if s.metrics != nil {
		s.metrics.CacheLookup("leave_policy", hit)
	}
}

func parseUUIDPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}
