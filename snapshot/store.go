package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/infigaming-com/currency-converter/lock"
	"github.com/infigaming-com/currency-converter/observability/metrics"
	"github.com/infigaming-com/currency-converter/rate"
	"go.uber.org/zap"
)

const (
	DefaultLockKey        = "currency-converter:rates-refresh"
	DefaultRefreshTimeout = 10 * time.Second

	lockRetryDelay = 100 * time.Millisecond
)

// Store owns the current snapshot. Reads take the read lock only; refreshes
// are serialized through lock.Lock so that one caller, possibly in another
// process, fetches and persists while the rest wait and reuse its result.
type Store struct {
	lg             *zap.Logger
	provider       rate.RateProvider
	storage        Storage
	lock           lock.Lock
	lockKey        string
	refreshTimeout time.Duration
	policy         Policy
	clock          func() time.Time
	recorder       metrics.Recorder

	mu         sync.RWMutex
	current    *Snapshot
	currencies []string
}

type Option func(*Store)

func WithPolicy(policy Policy) Option {
	return func(s *Store) {
		s.policy = policy
	}
}

// WithLock replaces the in-process refresh lock, e.g. with lock.NewRedisLock
// when several instances share one storage.
func WithLock(l lock.Lock) Option {
	return func(s *Store) {
		s.lock = l
	}
}

func WithLockKey(key string) Option {
	return func(s *Store) {
		s.lockKey = key
	}
}

// WithRefreshTimeout bounds a provider fetch during refresh. Waiters for the
// refresh lock wait twice as long, and a redis lock expires after the same
// span, so a healthy but slow refresh elsewhere is waited for, not failed.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.refreshTimeout = timeout
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

func WithRecorder(recorder metrics.Recorder) Option {
	return func(s *Store) {
		s.recorder = recorder
	}
}

func defaultStore() *Store {
	return &Store{
		lock:           lock.NewLocalLock(),
		lockKey:        DefaultLockKey,
		refreshTimeout: DefaultRefreshTimeout,
		policy:         NewDailyCutover(),
		clock:          time.Now,
		recorder:       metrics.NewNopRecorder(),
		current:        Empty(),
	}
}

// NewStore builds the store and runs Load. An unreachable provider leaves an
// empty snapshot behind instead of failing; conversions then report the
// connectivity failure.
func NewStore(ctx context.Context, lg *zap.Logger, provider rate.RateProvider, storage Storage, opts ...Option) *Store {
	s := defaultStore()
	s.lg = lg
	s.provider = provider
	s.storage = storage
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		lg.Error("failed to load initial rate snapshot", zap.Error(err))
		loaded = Empty()
	}
	s.swap(loaded)

	return s
}

// Load returns the persisted snapshot as is, without a staleness check, or
// fetches a fresh one when nothing usable is persisted.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	persisted, err := s.storage.Load(ctx)
	if err == nil {
		s.lg.Info("loaded persisted rate snapshot", zap.Timep("fetchedAt", persisted.FetchedAt), zap.Int("currencies", len(persisted.Rates)))
		return persisted, nil
	}
	if !errors.Is(err, ErrSnapshotNotFound) {
		s.lg.Warn("ignoring unreadable persisted snapshot", zap.Error(err))
	}

	return s.FetchFresh(ctx)
}

// FetchFresh asks the provider for new rates. A provider error is swallowed
// and the current snapshot is returned unchanged; connection errors are
// returned.
func (s *Store) FetchFresh(ctx context.Context) (*Snapshot, error) {
	fetched, fresh, err := s.fetch(ctx)
	if err != nil || !fresh {
		return fetched, err
	}

	persisted, err := s.storage.Exists(ctx)
	if err != nil {
		s.lg.Warn("failed to check persisted snapshot", zap.Error(err))
	} else if !persisted {
		if err := s.Persist(ctx, fetched); err != nil {
			s.lg.Warn("failed to persist rate snapshot", zap.Error(err))
		}
	}

	return fetched, nil
}

// fetch reports fresh=false when the provider error fallback was taken.
func (s *Store) fetch(ctx context.Context) (*Snapshot, bool, error) {
	table, err := s.provider.GetRates(ctx, BaseCurrency)
	if err != nil {
		if errors.Is(err, rate.ErrProvider) {
			s.lg.Warn("rate provider returned an unusable response, keeping previous snapshot", zap.Error(err))
			return s.Current(), false, nil
		}
		return nil, false, err
	}

	return fromRateTable(table, s.clock()), true, nil
}

// Persist overwrites the stored snapshot.
func (s *Store) Persist(ctx context.Context, snapshot *Snapshot) error {
	return s.storage.Save(ctx, snapshot)
}

func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// AvailableCurrencies returns the sorted codes of the current snapshot.
func (s *Store) AvailableCurrencies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	currencies := make([]string, len(s.currencies))
	copy(currencies, s.currencies)
	return currencies
}

// IsAvailable reports whether the current snapshot has a rate for currency.
func (s *Store) IsAvailable(currency string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.current.Rates[currency]
	return ok
}

func (s *Store) swap(snapshot *Snapshot) {
	currencies := snapshot.Currencies()
	s.mu.Lock()
	s.current = snapshot
	s.currencies = currencies
	s.mu.Unlock()
}

// lockOptions lets a waiter outlast the holder's bounded fetch plus its
// storage round trips.
func (s *Store) lockOptions() []lock.LockOption {
	hold := 2 * s.refreshTimeout
	return []lock.LockOption{
		lock.WithExpiry(hold),
		lock.WithRetryDelay(lockRetryDelay),
		lock.WithRetries(int(hold/lockRetryDelay) + 1),
	}
}

// RefreshIfStale replaces the current snapshot when the policy says it is
// stale at now. Provider errors fall back to the current snapshot; connection
// and lock failures are returned.
func (s *Store) RefreshIfStale(ctx context.Context, now time.Time) error {
	if !s.policy.IsStale(s.Current(), now) {
		return nil
	}

	start := time.Now()
	result := metrics.RefreshFailed
	defer func() {
		s.recorder.RecordRefresh(ctx, result, time.Since(start))
	}()

	unlock, err := s.lock.Lock(ctx, s.lockKey, s.lockOptions()...)
	if err != nil {
		s.lg.Error("failed to acquire refresh lock", zap.String("key", s.lockKey), zap.Error(err))
		return ErrRefreshLock.Wrap(err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.lg.Warn("failed to release refresh lock", zap.String("key", s.lockKey), zap.Error(err))
		}
	}()

	current := s.Current()
	if !s.policy.IsStale(current, now) {
		result = metrics.RefreshAdopted
		return nil
	}

	persisted, err := s.storage.Load(ctx)
	if err == nil && persisted.newer(current) && !s.policy.IsStale(persisted, now) {
		s.lg.Info("adopted rate snapshot refreshed elsewhere", zap.Timep("fetchedAt", persisted.FetchedAt))
		s.swap(persisted)
		result = metrics.RefreshAdopted
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	fetched, fresh, err := s.fetch(fetchCtx)
	cancel()
	if err != nil {
		s.lg.Error("failed to refresh rate snapshot", zap.Error(err))
		return err
	}
	if !fresh {
		result = metrics.RefreshFallback
		return nil
	}

	if err := s.Persist(ctx, fetched); err != nil {
		s.lg.Warn("failed to persist refreshed rate snapshot", zap.Error(err))
	}
	s.swap(fetched)
	result = metrics.RefreshFetched
	s.lg.Info("refreshed rate snapshot", zap.Timep("fetchedAt", fetched.FetchedAt), zap.Int("currencies", len(fetched.Rates)))

	return nil
}
