package service

import (
	"context"
	"time"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

// CallLogQuery filters a call log listing.
type CallLogQuery struct {
	Service  string
	CacheHit *bool
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// CallLogService exposes the audit trail of Wathq lookups.
type CallLogService interface {
	List(ctx context.Context, q CallLogQuery) (*ListResult[model.CallLog], error)
	Get(ctx context.Context, id string) (*model.CallLog, error)
	// Purge deletes logs of every tenant older than retention.
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type callLogService struct {
	repo repository.CallLogRepository
	now  func() time.Time
}

// NewCallLogService constructs a new CallLogService.
func NewCallLogService(repo repository.CallLogRepository) CallLogService {
	return &callLogService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *callLogService) List(ctx context.Context, q CallLogQuery) (*ListResult[model.CallLog], error) {
	f := repository.CallLogFilter{Service: q.Service, CacheHit: q.CacheHit, From: q.From, To: q.To}
	res, err := s.repo.List(ctx, f, pageQuery(q.Limit, q.Offset, ""))
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *callLogService) Get(ctx context.Context, id string) (*model.CallLog, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (s *callLogService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.PurgeBefore(ctx, s.now().Add(-retention))
}
