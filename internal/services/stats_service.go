package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/models"
)

// IStatsService defines the interface for the admin dashboard aggregator.
type IStatsService interface {
	// ComputeStats issues the metric queries concurrently and folds the
	// results into one snapshot. It never returns an error: a failed query
	// degrades that single metric to 0 and names it in Degraded.
	ComputeStats(ctx context.Context) *models.DashboardStats

	// CachedStats returns the last snapshot stored in Redis when it is
	// within the staleness window, computing and caching a fresh one
	// otherwise.
	CachedStats(ctx context.Context) *models.DashboardStats

	// RefreshSnapshot computes a snapshot and stores it in Redis. Used by
	// the background refresh task.
	RefreshSnapshot(ctx context.Context) error
}

const statsCacheKey = "dashboard:stats"

// statsService implements IStatsService on top of the entity services.
type statsService struct {
	profiles IProfileService
	listings IListingService
	orders   IOrderService
	messages IMessageService
	rdb      *redis.Client // nil disables snapshot caching
	cfg      *config.Config
}

// NewStatsService creates a new StatsService.
func NewStatsService(profiles IProfileService, listings IListingService, orders IOrderService, messages IMessageService, rdb *redis.Client, cfg *config.Config) IStatsService {
	return &statsService{
		profiles: profiles,
		listings: listings,
		orders:   orders,
		messages: messages,
		rdb:      rdb,
		cfg:      cfg,
	}
}

// ComputeStats runs the six metric queries together and waits for all of
// them to settle. Each metric degrades to 0 independently on failure.
func (s *statsService) ComputeStats(ctx context.Context) *models.DashboardStats {
	stats := &models.DashboardStats{GeneratedAt: time.Now().UTC()}

	var mu sync.Mutex
	var wg sync.WaitGroup

	degrade := func(metric string, err error) {
		log.Printf("Warning: dashboard metric %s failed, reporting 0: %v", metric, err)
		mu.Lock()
		stats.Degraded = append(stats.Degraded, metric)
		mu.Unlock()
	}

	run := func(metric string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				degrade(metric, err)
			}
		}()
	}

	run("total_users", func() error {
		n, err := s.profiles.CountAll(ctx)
		if err != nil {
			return err
		}
		stats.TotalUsers = n
		return nil
	})
	run("total_listings", func() error {
		n, err := s.listings.CountAll(ctx)
		if err != nil {
			return err
		}
		stats.TotalListings = n
		return nil
	})
	run("pending_approvals", func() error {
		n, err := s.listings.CountPending(ctx)
		if err != nil {
			return err
		}
		stats.PendingApprovals = n
		return nil
	})
	run("total_orders", func() error {
		n, err := s.orders.CountAll(ctx)
		if err != nil {
			return err
		}
		stats.TotalOrders = n
		return nil
	})
	run("monthly_revenue", func() error {
		sum, err := s.orders.SumRevenue(ctx)
		if err != nil {
			return err
		}
		stats.MonthlyRevenue = sum
		return nil
	})
	run("active_messages", func() error {
		n, err := s.messages.CountAll(ctx)
		if err != nil {
			return err
		}
		stats.ActiveMessages = n
		return nil
	})

	wg.Wait()
	return stats
}

// CachedStats serves the Redis snapshot when present, recomputing otherwise.
// A short staleness window is acceptable for the dashboard.
func (s *statsService) CachedStats(ctx context.Context) *models.DashboardStats {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			var cached models.DashboardStats
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached
			}
			log.Printf("Warning: corrupt dashboard stats cache entry, recomputing: %v", err)
		} else if err != redis.Nil {
			log.Printf("Warning: failed to read dashboard stats cache: %v", err)
		}
	}

	stats := s.ComputeStats(ctx)
	s.store(ctx, stats)
	return stats
}

// RefreshSnapshot recomputes the snapshot and stores it.
func (s *statsService) RefreshSnapshot(ctx context.Context) error {
	stats := s.ComputeStats(ctx)
	s.store(ctx, stats)
	return nil
}

func (s *statsService) store(ctx context.Context, stats *models.DashboardStats) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		log.Printf("Warning: failed to marshal dashboard stats for cache: %v", err)
		return
	}
	if err := s.rdb.Set(ctx, statsCacheKey, data, s.cfg.StatsCacheTTL).Err(); err != nil {
		log.Printf("Warning: failed to store dashboard stats cache: %v", err)
	}
}
