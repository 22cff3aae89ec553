package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

// Record types accepted by reports. The first five double as Wathq service names.
const (
	RecordCommercialRegistration = "commercial_registration"
	RecordRealEstateDeed         = "real_estate_deed"
	RecordPowerOfAttorney        = "power_of_attorney"
	RecordEmployee               = "employee"
	RecordNationalAddress        = "national_address"
	RecordContract               = "contract"
)

// Records groups the repositories of every Wathq-mirrored table.
type Records struct {
	CommercialRegistrations repository.RecordRepository[model.CommercialRegistration]
	RealEstateDeeds         repository.RecordRepository[model.RealEstateDeed]
	PowersOfAttorney        repository.RecordRepository[model.PowerOfAttorney]
	Employees               repository.RecordRepository[model.Employee]
	NationalAddresses       repository.RecordRepository[model.NationalAddress]
	Contracts               repository.RecordRepository[model.Contract]
}

// Find loads a record of the given type by id.
func (r Records) Find(ctx context.Context, recordType, id string) (any, error) {
	var (
		rec any
		err error
	)
	switch recordType {
	case RecordCommercialRegistration:
		rec, err = r.CommercialRegistrations.FindByID(ctx, id)
	case RecordRealEstateDeed:
		rec, err = r.RealEstateDeeds.FindByID(ctx, id)
	case RecordPowerOfAttorney:
		rec, err = r.PowersOfAttorney.FindByID(ctx, id)
	case RecordEmployee:
		rec, err = r.Employees.FindByID(ctx, id)
	case RecordNationalAddress:
		rec, err = r.NationalAddresses.FindByID(ctx, id)
	case RecordContract:
		rec, err = r.Contracts.FindByID(ctx, id)
	default:
		return nil, ErrUnknownRecordType
	}
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

// RecordService is the CRUD use case shared by the Wathq-mirrored records.
type RecordService[T any] interface {
	List(ctx context.Context, limit, offset int, search string) (*ListResult[T], error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, rec *T) (*T, error)
	Update(ctx context.Context, id string, rec *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type recordService[T any] struct {
	repo repository.RecordRepository[T]
	base func(*T) *model.Base
}

// NewRecordService constructs a RecordService. base exposes the embedded
// model.Base of T.
func NewRecordService[T any](repo repository.RecordRepository[T], base func(*T) *model.Base) RecordService[T] {
	return &recordService[T]{repo: repo, base: base}
}

func (s *recordService[T]) List(ctx context.Context, limit, offset int, search string) (*ListResult[T], error) {
	res, err := s.repo.List(ctx, pageQuery(limit, offset, search))
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *recordService[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

// snapshotted is implemented by records that keep the last Wathq response.
// Only lookups write that response.
type snapshotted interface {
	Snapshot() (json.RawMessage, *time.Time)
	SetSnapshot(payload json.RawMessage, fetchedAt *time.Time)
}

func (s *recordService[T]) Create(ctx context.Context, rec *T) (*T, error) {
	// Identity and audit columns are never client controlled.
	*s.base(rec) = model.Base{}
	if snap, ok := any(rec).(snapshotted); ok {
		snap.SetSnapshot(nil, nil)
	}
	return s.repo.Create(ctx, rec)
}

func (s *recordService[T]) Update(ctx context.Context, id string, rec *T) (*T, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	*s.base(rec) = model.Base{ID: id}
	if snap, ok := any(rec).(snapshotted); ok {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, notFound(err)
		}
		snap.SetSnapshot(any(current).(snapshotted).Snapshot())
	}
	updated, err := s.repo.Update(ctx, rec)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (s *recordService[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.repo.Delete(ctx, id))
}
