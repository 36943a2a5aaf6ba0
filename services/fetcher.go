// services/fetcher.go
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salescrm/crm_backend/models"
	"github.com/salescrm/crm_backend/utils"
)

// fetchTimeout bounds every individual collection query. A fetch that
// exceeds it degrades to an empty result instead of failing the request.
const fetchTimeout = 20 * time.Second

// Date range symbols accepted by the analytics endpoints
const (
	RangeToday   = "today"
	RangeWeek    = "week"
	RangeMonth   = "month"
	RangeQuarter = "quarter"
	RangeYear    = "year"
	RangeAll     = "all"
)

// DateRangeWindow maps a symbolic date range to its look-back start time.
// The second return value is false for "all" (and anything unrecognized),
// meaning no time bound applies.
func DateRangeWindow(dateRange string, now time.Time) (time.Time, bool) {
	switch dateRange {
	case RangeToday:
		return now.AddDate(0, 0, -1), true
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return now.AddDate(0, 0, -30), true
	case RangeQuarter:
		return now.AddDate(0, 0, -90), true
	case RangeYear:
		return now.AddDate(0, 0, -365), true
	default:
		return time.Time{}, false
	}
}

// RecordSets holds the outcome of the parallel scoped fetches. Slices are
// always non-nil; a failed fetch leaves its slice empty.
type RecordSets struct {
	Deals     []models.Deal
	Callbacks []models.Callback
	Targets   []models.Target
	Users     []models.User
}

// Fetcher issues role-scoped queries against the CRM collections.
type Fetcher struct {
	db *mongo.Database
}

// NewFetcher creates a new Fetcher over the given database
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{db: db}
}

// buildFilter combines the scope predicate with the date-range window.
// Legacy documents may carry created_at instead of createdAt, so the window
// matches either field.
func buildFilter(predicate bson.M, dateRange string, now time.Time) bson.M {
	filter := bson.M{}
	for k, v := range predicate {
		filter[k] = v
	}

	start, bounded := DateRangeWindow(dateRange, now)
	if !bounded {
		return filter
	}

	window := []bson.M{
		{"createdAt": bson.M{"$gte": start}},
		{"created_at": bson.M{"$gte": start}},
	}
	if existing, ok := filter["$or"]; ok {
		// predicate already uses $or; combine with $and so both apply
		delete(filter, "$or")
		filter["$and"] = []bson.M{
			{"$or": existing},
			{"$or": window},
		}
	} else {
		filter["$or"] = window
	}
	return filter
}

// FetchDeals returns the deals visible under the scope, newest first.
func (f *Fetcher) FetchDeals(ctx context.Context, scope *Scope, dateRange string, limit, offset int64) ([]models.Deal, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := f.db.Collection("deals").Find(ctx, buildFilter(scope.Deals, dateRange, time.Now()), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	deals := []models.Deal{}
	if err := cursor.All(ctx, &deals); err != nil {
		return nil, err
	}
	for i := range deals {
		deals[i].Normalize()
	}
	return deals, nil
}

// FetchCallbacks returns the callbacks visible under the scope, newest first.
func (f *Fetcher) FetchCallbacks(ctx context.Context, scope *Scope, dateRange string, limit, offset int64) ([]models.Callback, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := f.db.Collection("callbacks").Find(ctx, buildFilter(scope.Callbacks, dateRange, time.Now()), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	callbacks := []models.Callback{}
	if err := cursor.All(ctx, &callbacks); err != nil {
		return nil, err
	}
	for i := range callbacks {
		callbacks[i].Normalize()
	}
	return callbacks, nil
}

// FetchTargets returns the targets visible under the scope. Targets are not
// date-range filtered; the period fields already scope them to a month.
func (f *Fetcher) FetchTargets(ctx context.Context, scope *Scope, limit, offset int64) ([]models.Target, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	filter := scope.Targets
	if filter == nil {
		filter = bson.M{}
	}

	cursor, err := f.db.Collection("targets").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	targets := []models.Target{}
	if err := cursor.All(ctx, &targets); err != nil {
		return nil, err
	}
	for i := range targets {
		targets[i].Normalize()
		if targets[i].TargetAmount == 0 && targets[i].AltTargetAmount != nil {
			targets[i].TargetAmount = utils.ParseAmount(targets[i].AltTargetAmount)
		}
		if targets[i].CurrentAmount == 0 && targets[i].AltCurrentAmount != nil {
			targets[i].CurrentAmount = utils.ParseAmount(targets[i].AltCurrentAmount)
		}
		targets[i].AltTargetAmount = nil
		targets[i].AltCurrentAmount = nil
	}
	return targets, nil
}

// FetchUsers returns all users without passwords. Only callable for scopes
// with AllowUsers (manager).
func (f *Fetcher) FetchUsers(ctx context.Context, limit, offset int64) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "fullName", Value: 1}}).
		SetProjection(bson.M{"password": 0})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := f.db.Collection("users").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FetchNotifications returns the notifications addressed to the user,
// either directly or through a role broadcast, newest first.
func (f *Fetcher) FetchNotifications(ctx context.Context, userID, role string, limit, offset int64) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	filter := bson.M{"$or": []bson.M{
		{"recipients": userID},
		{"recipientRole": role},
	}}

	cursor, err := f.db.Collection("notifications").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// FetchAll runs the four collection fetches concurrently. Each fetch is
// independently bounded and degrades to an empty slice on error or timeout,
// so the caller always receives a complete RecordSets.
func (f *Fetcher) FetchAll(ctx context.Context, scope *Scope, dateRange string) *RecordSets {
	sets := &RecordSets{
		Deals:     []models.Deal{},
		Callbacks: []models.Callback{},
		Targets:   []models.Target{},
		Users:     []models.User{},
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		deals, err := f.FetchDeals(ctx, scope, dateRange, 0, 0)
		if err != nil {
			log.Printf("Error fetching deals, continuing with empty set: %v", err)
			return
		}
		sets.Deals = deals
	}()

	go func() {
		defer wg.Done()
		callbacks, err := f.FetchCallbacks(ctx, scope, dateRange, 0, 0)
		if err != nil {
			log.Printf("Error fetching callbacks, continuing with empty set: %v", err)
			return
		}
		sets.Callbacks = callbacks
	}()

	go func() {
		defer wg.Done()
		targets, err := f.FetchTargets(ctx, scope, 0, 0)
		if err != nil {
			log.Printf("Error fetching targets, continuing with empty set: %v", err)
			return
		}
		sets.Targets = targets
	}()

	if scope.AllowUsers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			users, err := f.FetchUsers(ctx, 0, 0)
			if err != nil {
				log.Printf("Error fetching users, continuing with empty set: %v", err)
				return
			}
			sets.Users = users
		}()
	}

	wg.Wait()
	return sets
}
