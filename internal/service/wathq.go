package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/wathq"
)

// NotificationOfflineData is the notification type sent when a lookup is
// answered from stored records because Wathq failed.
const NotificationOfflineData = "wathq.offline_data"

// LookupResult is the answer of WathqService.Lookup.
type LookupResult struct {
	Service    string          `json:"service"`
	Source     string          `json:"source"`
	CacheHit   bool            `json:"cache_hit"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data" swaggertype:"object"`
	FetchedAt  *time.Time      `json:"fetched_at,omitempty"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	CallLogID  string          `json:"call_log_id,omitempty"`
}

// WathqService is the caching proxy in front of Wathq.
type WathqService interface {
	// Lookup answers from the tenant's cache, then Wathq, then stored records.
	Lookup(ctx context.Context, service string, params map[string]string) (*LookupResult, error)
	// Invalidate drops the cached response for a lookup.
	Invalidate(ctx context.Context, service string, params map[string]string) error
	// PurgeExpired deletes expired cache entries of every tenant.
	PurgeExpired(ctx context.Context) (int64, error)
}

type wathqService struct {
	fetcher  wathq.Fetcher
	cache    repository.CacheRepository
	logs     repository.CallLogRepository
	offline  map[string]offlineStore
	notifier Notifier
	metrics  *wathq.Metrics
	cfg      config.WathqConfig
	now      func() time.Time
}

// NewWathqService constructs a new WathqService. notifier and metrics may be nil.
func NewWathqService(
	fetcher wathq.Fetcher,
	cache repository.CacheRepository,
	logs repository.CallLogRepository,
	records Records,
	notifier Notifier,
	metrics *wathq.Metrics,
	cfg config.WathqConfig,
) WathqService {
	return &wathqService{
		fetcher:  fetcher,
		cache:    cache,
		logs:     logs,
		offline:  offlineStores(records),
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CacheKey identifies a lookup: sha256 over the service name and its
// canonical parameters in key order.
func CacheKey(service string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(service)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func (s *wathqService) resolve(service string, params map[string]string) (map[string]string, error) {
	ep, ok := wathq.EndpointFor(service)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
	if err := ep.Validate(params); err != nil {
		return nil, err
	}
	return ep.Canonical(params), nil
}

func (s *wathqService) Lookup(ctx context.Context, service string, params map[string]string) (*LookupResult, error) {
	canon, err := s.resolve(service, params)
	if err != nil {
		return nil, err
	}
	key := CacheKey(service, canon)
	reqParams, _ := json.Marshal(canon)
	log := &model.CallLog{
		UserID:        tenant.ActorID(ctx),
		Service:       service,
		CacheKey:      key,
		RequestParams: reqParams,
	}

	entry, err := s.cache.Get(ctx, key, s.now())
	switch {
	case err == nil:
		s.metrics.CacheLookup(service, true)
		log.CacheHit = true
		log.Source = model.SourceCache
		log.StatusCode = entry.StatusCode
		log.ResponseBody = entry.Body
		res := &LookupResult{
			Service:    service,
			Source:     model.SourceCache,
			CacheHit:   true,
			StatusCode: entry.StatusCode,
			Data:       entry.Body,
			FetchedAt:  &entry.CreatedAt,
			ExpiresAt:  &entry.ExpiresAt,
		}
		res.CallLogID = s.writeLog(ctx, log)
		return res, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("read wathq cache: %w", err)
	}
	s.metrics.CacheLookup(service, false)

	resp, fetchErr := s.fetcher.Fetch(ctx, wathq.Request{Service: service, Params: canon})
	if resp != nil {
		log.Method = resp.Method
		log.Endpoint = resp.Endpoint
		log.StatusCode = resp.StatusCode
		log.ResponseBody = resp.Body
		log.DurationMS = resp.Duration.Milliseconds()
	}
	log.Source = model.SourceLive
	if fetchErr != nil {
		log.ErrorMessage = fetchErr.Error()
	}

	switch {
	case fetchErr == nil:
		return s.storeLive(ctx, service, canon, key, resp, log)
	case errors.Is(fetchErr, wathq.ErrNotFound):
		s.writeLog(ctx, log)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, service)
	}

	// Wathq failed: fall back to the record stored by an earlier lookup.
	if store, ok := s.offline[service]; ok {
		data, fetchedAt, err := store.load(ctx, canon)
		if err == nil {
			log.Source = model.SourceOffline
			res := &LookupResult{
				Service:    service,
				Source:     model.SourceOffline,
				StatusCode: 200,
				Data:       data,
				FetchedAt:  fetchedAt,
			}
			res.CallLogID = s.writeLog(ctx, log)
			s.notifyOffline(ctx, service, fetchErr)
			return res, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("service", service).Msg("wathq offline lookup failed")
		}
	}
	s.writeLog(ctx, log)
	return nil, fmt.Errorf("%w: %v", ErrUpstream, fetchErr)
}

func (s *wathqService) storeLive(ctx context.Context, service string, canon map[string]string, key string, resp *wathq.Response, log *model.CallLog) (*LookupResult, error) {
	now := s.now()
	expires := now.Add(s.cfg.TTLFor(service))
	err := s.cache.Put(ctx, &model.CacheEntry{
		Service:    service,
		CacheKey:   key,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		ExpiresAt:  expires,
		CreatedAt:  now,
	})
	cached := err == nil
	if !cached {
		// The live answer is still served; the next lookup goes upstream again.
		zerolog.Ctx(ctx).Error().Err(err).Str("service", service).Str("cache_key", key).Msg("wathq cache write failed")
	}

	if store, ok := s.offline[service]; ok {
		// A body that does not fit the record table is still served.
		if err := store.save(ctx, canon, resp.Body, now); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("service", service).Msg("wathq offline save failed")
		}
	}

	res := &LookupResult{
		Service:    service,
		Source:     model.SourceLive,
		StatusCode: resp.StatusCode,
		Data:       resp.Body,
		FetchedAt:  &now,
	}
	if cached {
		res.ExpiresAt = &expires
	}
	res.CallLogID = s.writeLog(ctx, log)
	return res, nil
}

// writeLog persists the call log and returns its id. A failing audit write
// is logged and does not fail the lookup.
func (s *wathqService) writeLog(ctx context.Context, l *model.CallLog) string {
	saved, err := s.logs.Create(ctx, l)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("service", l.Service).Str("cache_key", l.CacheKey).Msg("wathq call log write failed")
		return ""
	}
	return saved.ID
}

func (s *wathqService) notifyOffline(ctx context.Context, service string, cause error) {
	if s.notifier == nil {
		return
	}
	actor, ok := tenant.ActorFromContext(ctx)
	if !ok || actor.Kind != tenant.KindUser {
		return
	}
	_, err := s.notifier.Notify(ctx, NotifyInput{
		UserID: actor.UserID,
		Type:   NotificationOfflineData,
		Title:  "Wathq unavailable, stored data returned",
		Body:   fmt.Sprintf("The %s lookup was answered from stored records: %v", service, cause),
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("offline data notification failed")
	}
}

func (s *wathqService) Invalidate(ctx context.Context, service string, params map[string]string) error {
	canon, err := s.resolve(service, params)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, CacheKey(service, canon))
}

func (s *wathqService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.cache.PurgeExpired(ctx, s.now())
}

// offlineStore keeps the last good response of a service in its record table.
type offlineStore interface {
	save(ctx context.Context, params map[string]string, body json.RawMessage, at time.Time) error
	load(ctx context.Context, params map[string]string) (json.RawMessage, *time.Time, error)
}

type mirrored[T any] interface {
	*T
	Snapshot() (json.RawMessage, *time.Time)
	MarkFetched(at time.Time)
}

type offlineTable[T any, P mirrored[T]] struct {
	repo   repository.RecordRepository[T]
	decode func(map[string]string, json.RawMessage) (*T, error)
	param  string
}

func newOfflineTable[T any, P mirrored[T]](repo repository.RecordRepository[T], decode func(map[string]string, json.RawMessage) (*T, error), param string) offlineStore {
	return &offlineTable[T, P]{repo: repo, decode: decode, param: param}
}

func (o *offlineTable[T, P]) save(ctx context.Context, params map[string]string, body json.RawMessage, at time.Time) error {
	rec, err := o.decode(params, body)
	if err != nil {
		return err
	}
	P(rec).MarkFetched(at)
	_, err = o.repo.Upsert(ctx, rec)
	return err
}

func (o *offlineTable[T, P]) load(ctx context.Context, params map[string]string) (json.RawMessage, *time.Time, error) {
	rec, err := o.repo.FindByKey(ctx, params[o.param])
	if err != nil {
		return nil, nil, err
	}
	payload, fetchedAt := P(rec).Snapshot()
	if len(payload) == 0 || string(payload) == "{}" {
		// Entered by hand, never fetched.
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, nil, err
		}
		payload = b
	}
	return payload, fetchedAt, nil
}

func offlineStores(r Records) map[string]offlineStore {
	out := make(map[string]offlineStore, 5)
	if r.CommercialRegistrations != nil {
		out[wathq.ServiceCommercialRegistration] = newOfflineTable(r.CommercialRegistrations, wathq.DecodeCommercialRegistration, "cr_national_number")
	}
	if r.RealEstateDeeds != nil {
		out[wathq.ServiceRealEstateDeed] = newOfflineTable(r.RealEstateDeeds, wathq.DecodeRealEstateDeed, "deed_number")
	}
	if r.PowersOfAttorney != nil {
		out[wathq.ServicePowerOfAttorney] = newOfflineTable(r.PowersOfAttorney, wathq.DecodePowerOfAttorney, "code")
	}
	if r.Employees != nil {
		out[wathq.ServiceEmployee] = newOfflineTable(r.Employees, wathq.DecodeEmployee, "national_id")
	}
	if r.NationalAddresses != nil {
		out[wathq.ServiceNationalAddress] = newOfflineTable(r.NationalAddresses, wathq.DecodeNationalAddress, "national_id")
	}
	return out
}
