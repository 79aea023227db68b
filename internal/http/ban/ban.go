package ban

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	DailyBanLogKey = "ratelimit:banlog:daily"
	strikesPrefix  = "ratelimit:strikes:"
	banPrefix      = "ratelimit:ban:"
)

type BanLogEntry struct {
	Target  string    `json:"target"`
	Route   string    `json:"route"`
	Strikes int       `json:"strikes"`
	Time    time.Time `json:"time"`
}

// Summary aggregates the ban log of one day.
type Summary struct {
	Total    int
	ByRoute  map[string]int
	ByTarget map[string]int
	Entries  []BanLogEntry
}

// Banner bans clients that keep hitting the rate limit. Strikes accumulate
// within window; reaching maxStrikes bans the client for duration.
type Banner struct {
	rdb        *redis.Client
	maxStrikes int
	window     time.Duration
	duration   time.Duration
}

func NewBanner(rdb *redis.Client, maxStrikes int, window, duration time.Duration) *Banner {
	return &Banner{
		rdb:        rdb,
		maxStrikes: maxStrikes,
		window:     window,
		duration:   duration,
	}
}

// IsBanned reports whether target is banned and for how much longer.
func (b *Banner) IsBanned(ctx context.Context, target string) (bool, time.Duration, error) {
	ttl, err := b.rdb.TTL(ctx, banPrefix+target).Result()
	if err != nil {
		return false, 0, err
	}
	// TTL is negative when the key is missing.
	if ttl < 0 {
		return false, 0, nil
	}
	return true, ttl, nil
}

// AddStrike records a rejected request and bans target once it reaches the
// strike limit. It reports whether this strike caused a ban.
func (b *Banner) AddStrike(ctx context.Context, target, route string) (bool, error) {
	key := strikesPrefix + target
	strikes, err := b.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if strikes == 1 {
		if err := b.rdb.Expire(ctx, key, b.window).Err(); err != nil {
			return false, err
		}
	}
	if int(strikes) < b.maxStrikes {
		return false, nil
	}

	pipe := b.rdb.TxPipeline()
	pipe.Set(ctx, banPrefix+target, route, b.duration)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	log.WithFields(log.Fields{
		"target":  target,
		"route":   route,
		"strikes": strikes,
		"for":     b.duration.String(),
	}).Warn("client banned")
	b.logBanEvent(ctx, target, route, int(strikes))
	return true, nil
}

func (b *Banner) logBanEvent(ctx context.Context, target, route string, strikes int) {
	entry := BanLogEntry{
		Target:  target,
		Route:   route,
		Strikes: strikes,
		Time:    time.Now().UTC(),
	}
	data, _ := json.Marshal(entry)
	if err := b.rdb.RPush(ctx, DailyBanLogKey, data).Err(); err != nil {
		log.WithError(err).Warn("failed to record ban event")
	}
}

// StartDailyBanSummary logs the ban summary every day at 23:59 until ctx is done.
func (b *Banner) StartDailyBanSummary(ctx context.Context) {
	for {
		timer := time.NewTimer(time.Until(nextSummaryTime(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if _, err := b.SendDailyBanSummary(ctx); err != nil {
				log.WithError(err).Error("daily ban summary failed")
			}
		}
	}
}

func nextSummaryTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// SendDailyBanSummary drains the daily ban log and writes its aggregate to the log.
func (b *Banner) SendDailyBanSummary(ctx context.Context) (Summary, error) {
	s := Summary{ByRoute: map[string]int{}, ByTarget: map[string]int{}}

	pipe := b.rdb.TxPipeline()
	entriesCmd := pipe.LRange(ctx, DailyBanLogKey, 0, -1)
	pipe.Del(ctx, DailyBanLogKey)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return s, fmt.Errorf("read ban log: %w", err)
	}

	for _, item := range entriesCmd.Val() {
		var entry BanLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		s.Entries = append(s.Entries, entry)
		s.ByRoute[entry.Route]++
		s.ByTarget[entry.Target]++
	}
	s.Total = len(s.Entries)
	if s.Total == 0 {
		return s, nil
	}

	log.WithFields(log.Fields{
		"total":     s.Total,
		"by_route":  sortedCounts(s.ByRoute),
		"by_target": sortedCounts(s.ByTarget),
	}).Info("daily ban summary")
	return s, nil
}

func sortedCounts(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for k, v := range counts {
		out = append(out, fmt.Sprintf("%s=%d", k, v))
	}
	sort.Strings(out)
	return out
}
