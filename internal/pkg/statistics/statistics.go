package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/internal/pkg/cache"
	"github.com/bodhiverse/bodhika/internal/pkg/database"
)

const (
	CacheKeyUsersTotal      = "statistics:users:total"
	CacheKeyPlansFourDay    = "statistics:plans:four_day"
	CacheKeyPlansSixMonth   = "statistics:plans:six_month"
	CacheKeyOrdersPaid      = "statistics:orders:paid"
	CacheKeyContentEBooks   = "statistics:content:ebooks"
	CacheKeyContentVideos   = "statistics:content:videos"
	CacheKeyContentWebinars = "statistics:content:webinars"
	CacheExpiration         = 30 * time.Minute
)

// StatisticsData is the admin dashboard snapshot
type StatisticsData struct {
	TotalUsers     int `json:"total_users"`
	ActiveFourDay  int `json:"active_four_day"`
	ActiveSixMonth int `json:"active_six_month"`
	PaidOrders     int `json:"paid_orders"`
	TotalEBooks    int `json:"total_ebooks"`
	TotalVideos    int `json:"total_videos"`
	TotalWebinars  int `json:"total_webinars"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// UpdateCacheIfNeeded refreshes the cached statistics when they are stale
func UpdateCacheIfNeeded() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	if time.Since(lastCacheUpdate) <= cacheUpdateInterval {
		return
	}
	if err := UpdateStatisticsCache(); err != nil {
		log.Printf("failed to update statistics cache: %v", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// UpdateStatisticsCache recounts everything and writes the values to Redis
func UpdateStatisticsCache() error {
	db := database.GetDB()

	counts := []struct {
		key   string
		count func() (int64, error)
	}{
		{CacheKeyUsersTotal, func() (int64, error) {
			var n int64
			return n, db.Model(&models.User{}).Count(&n).Error
		}},
		{CacheKeyPlansFourDay, func() (int64, error) {
			var n int64
			return n, db.Model(&models.Subscription{}).
				Where("type = ? AND is_active = ?", models.PlanFourDay, true).Count(&n).Error
		}},
		{CacheKeyPlansSixMonth, func() (int64, error) {
			var n int64
			return n, db.Model(&models.Subscription{}).
				Where("type = ? AND is_active = ?", models.PlanSixMonth, true).Count(&n).Error
		}},
		{CacheKeyOrdersPaid, func() (int64, error) {
			var n int64
			return n, db.Model(&models.PaymentOrder{}).
				Where("status = ?", models.OrderStatusPaid).Count(&n).Error
		}},
		{CacheKeyContentEBooks, func() (int64, error) {
			var n int64
			return n, db.Model(&models.EBook{}).Count(&n).Error
		}},
		{CacheKeyContentVideos, func() (int64, error) {
			var n int64
			return n, db.Model(&models.Video{}).Count(&n).Error
		}},
		{CacheKeyContentWebinars, func() (int64, error) {
			var n int64
			return n, db.Model(&models.Webinar{}).Count(&n).Error
		}},
	}

	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			log.Printf("statistics count for %s failed: %v", c.key, err)
			return err
		}
		if err := cache.Set(c.key, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
			return err
		}
	}
	return nil
}

// GetStatistics reads the cached snapshot, refreshing it first if stale
func GetStatistics() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalUsers:     cachedInt(CacheKeyUsersTotal),
		ActiveFourDay:  cachedInt(CacheKeyPlansFourDay),
		ActiveSixMonth: cachedInt(CacheKeyPlansSixMonth),
		PaidOrders:     cachedInt(CacheKeyOrdersPaid),
		TotalEBooks:    cachedInt(CacheKeyContentEBooks),
		TotalVideos:    cachedInt(CacheKeyContentVideos),
		TotalWebinars:  cachedInt(CacheKeyContentWebinars),
	}
}

func cachedInt(key string) int {
	n, err := cache.GetInt(key)
	if err != nil {
		return 0
	}
	return n
}
