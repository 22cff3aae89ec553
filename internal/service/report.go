package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/pdf"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/storage"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

const contentTypePDF = "application/pdf"

// CreateReportInput selects the record to render.
type CreateReportInput struct {
	RecordType string `json:"record_type" validate:"required,oneof=commercial_registration real_estate_deed power_of_attorney employee national_address contract"`
	RecordID   string `json:"record_id" validate:"required,uuid"`
}

// ReportView is a report with a time-limited download URL.
type ReportView struct {
	model.Report
	DownloadURL string `json:"download_url"`
}

// Renderer turns a document description into PDF bytes.
type Renderer interface {
	Render(doc pdf.Document) ([]byte, error)
}

// ReportService generates PDF reports of stored records.
type ReportService interface {
	// Create renders the record, uploads the PDF and stores its metadata. The
	// uploaded object is removed again when the metadata cannot be saved.
	Create(ctx context.Context, in CreateReportInput) (*model.Report, error)
	List(ctx context.Context, limit, offset int) (*ListResult[model.Report], error)
	Get(ctx context.Context, id string) (*ReportView, error)
	// Download streams the PDF. The caller closes the reader.
	Download(ctx context.Context, id string) (io.ReadCloser, *model.Report, error)
	// Delete removes the object first, then its metadata.
	Delete(ctx context.Context, id string) error
}

type reportService struct {
	store    storage.Storage
	repo     repository.ReportRepository
	records  Records
	renderer Renderer
	expiry   time.Duration
	now      func() time.Time
}

// NewReportService constructs a new ReportService.
func NewReportService(store storage.Storage, repo repository.ReportRepository, records Records, renderer Renderer, presignExpiry time.Duration) ReportService {
	return &reportService{
		store:    store,
		repo:     repo,
		records:  records,
		renderer: renderer,
		expiry:   presignExpiry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) Create(ctx context.Context, in CreateReportInput) (*model.Report, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Find(ctx, in.RecordType, in.RecordID)
	if err != nil {
		return nil, err
	}
	doc, err := describeRecord(rec)
	if err != nil {
		return nil, err
	}
	doc.GeneratedAt = s.now()
	doc.GeneratedBy = tenant.ActorID(ctx)

	body, err := s.renderer.Render(doc)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := storage.ReportKey(tid, id)
	filename := fmt.Sprintf("%s-%s.pdf", in.RecordType, doc.GeneratedAt.Format("20060102-150405"))
	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:               int64(len(body)),
		ContentType:        contentTypePDF,
		ContentDisposition: storage.AttachmentDisposition(filename),
		Metadata: map[string]string{
			"record-type": in.RecordType,
			"record-id":   in.RecordID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	stored, err := s.repo.Create(ctx, &model.Report{
		ID:          id,
		RecordType:  in.RecordType,
		RecordID:    in.RecordID,
		Filename:    filename,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: contentTypePDF,
		CreatedAt:   doc.GeneratedAt,
		CreatedBy:   doc.GeneratedBy,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *reportService) List(ctx context.Context, limit, offset int) (*ListResult[model.Report], error) {
	res, err := s.repo.List(ctx, pageQuery(limit, offset, ""))
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *reportService) find(ctx context.Context, id string) (*model.Report, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *reportService) Get(ctx context.Context, id string) (*ReportView, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.store.PresignGet(ctx, r.StoragePath, s.expiry, r.Filename)
	if err != nil {
		return nil, fmt.Errorf("presign report: %w", err)
	}
	return &ReportView{Report: *r, DownloadURL: url}, nil
}

func (s *reportService) Download(ctx context.Context, id string) (io.ReadCloser, *model.Report, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, r.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read storage: %w", err)
	}
	return rc, r, nil
}

func (s *reportService) Delete(ctx context.Context, id string) error {
	r, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	// Keep the row when the object cannot be removed so it can be retried.
	if err := s.store.Delete(ctx, r.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return notFound(s.repo.Delete(ctx, id))
}

func describeRecord(rec any) (pdf.Document, error) {
	switch r := rec.(type) {
	case *model.CommercialRegistration:
		return pdf.Document{
			Title:    "Commercial registration " + r.CRNationalNumber,
			Subtitle: r.Name,
			Sections: []pdf.Section{{Heading: "Registration", Fields: []pdf.Field{
				{Label: "CR national number", Value: r.CRNationalNumber},
				{Label: "CR number", Value: r.CRNumber},
				{Label: "Entity type", Value: r.EntityType},
				{Label: "Status", Value: r.Status},
				{Label: "City", Value: r.City},
				{Label: "Capital (SAR)", Value: nullDecimal(r.Capital)},
				{Label: "Issue date", Value: date(r.IssueDate)},
				{Label: "Expiry date", Value: date(r.ExpiryDate)},
			}}, fetchedSection(r.FetchedAt)},
		}, nil
	case *model.RealEstateDeed:
		return pdf.Document{
			Title:    "Real-estate deed " + r.DeedNumber,
			Subtitle: r.City + " " + r.District,
			Sections: []pdf.Section{{Heading: "Deed", Fields: []pdf.Field{
				{Label: "Deed number", Value: r.DeedNumber},
				{Label: "Deed date", Value: date(r.DeedDate)},
				{Label: "Status", Value: r.Status},
				{Label: "Owner id", Value: r.OwnerID + " (" + r.OwnerIDType + ")"},
				{Label: "Region", Value: r.Region},
				{Label: "City", Value: r.City},
				{Label: "District", Value: r.District},
				{Label: "Area (m2)", Value: nullDecimal(r.Area)},
			}}, fetchedSection(r.FetchedAt)},
		}, nil
	case *model.PowerOfAttorney:
		return pdf.Document{
			Title: "Power of attorney " + r.Code,
			Sections: []pdf.Section{{Heading: "Power of attorney", Fields: []pdf.Field{
				{Label: "Code", Value: r.Code},
				{Label: "Status", Value: r.Status},
				{Label: "Principal", Value: r.PrincipalName + " " + r.PrincipalID},
				{Label: "Agent", Value: r.AgentName + " " + r.AgentID},
				{Label: "Issue date", Value: date(r.IssueDate)},
				{Label: "Expiry date", Value: date(r.ExpiryDate)},
			}}, fetchedSection(r.FetchedAt)},
		}, nil
	case *model.Employee:
		return pdf.Document{
			Title:    "Employee " + r.NationalID,
			Subtitle: r.FullName,
			Sections: []pdf.Section{{Heading: "Employment", Fields: []pdf.Field{
				{Label: "National id", Value: r.NationalID},
				{Label: "Full name", Value: r.FullName},
				{Label: "Nationality", Value: r.Nationality},
				{Label: "Employer", Value: r.EmployerName + " " + r.EmployerNumber},
				{Label: "Job title", Value: r.JobTitle},
				{Label: "Basic salary (SAR)", Value: nullDecimal(r.BasicSalary)},
				{Label: "Start date", Value: date(r.StartDate)},
			}}, fetchedSection(r.FetchedAt)},
		}, nil
	case *model.NationalAddress:
		return pdf.Document{
			Title:    "National address " + r.ShortAddress,
			Subtitle: r.NationalID,
			Sections: []pdf.Section{{Heading: "Address", Fields: []pdf.Field{
				{Label: "Building number", Value: r.BuildingNumber},
				{Label: "Street", Value: r.Street},
				{Label: "District", Value: r.District},
				{Label: "City", Value: r.City},
				{Label: "Postal code", Value: r.PostalCode},
				{Label: "Additional number", Value: r.AdditionalNumber},
				{Label: "Short address", Value: r.ShortAddress},
				{Label: "Coordinates", Value: coordinates(r.Latitude, r.Longitude)},
			}}, fetchedSection(r.FetchedAt)},
		}, nil
	case *model.Contract:
		value := r.Value.StringFixed(2)
		if r.Currency != "" {
			value += " " + r.Currency
		}
		return pdf.Document{
			Title:    "Contract " + r.ContractNumber,
			Subtitle: r.Title,
			Sections: []pdf.Section{{Heading: "Contract", Fields: []pdf.Field{
				{Label: "Contract number", Value: r.ContractNumber},
				{Label: "Status", Value: r.Status},
				{Label: "Employee id", Value: r.EmployeeID},
				{Label: "Commercial registration id", Value: deref(r.CommercialRegistrationID)},
				{Label: "Start date", Value: date(&r.StartDate)},
				{Label: "End date", Value: date(r.EndDate)},
				{Label: "Value", Value: value},
				{Label: "Notes", Value: r.Notes},
			}}},
		}, nil
	default:
		return pdf.Document{}, ErrUnknownRecordType
	}
}

func fetchedSection(at *time.Time) pdf.Section {
	src := "Entered manually"
	if at != nil {
		src = "Fetched from Wathq at " + at.UTC().Format(time.RFC3339)
	}
	return pdf.Section{Heading: "Source", Fields: []pdf.Field{{Label: "Origin", Value: src}}}
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func nullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func coordinates(lat, lng decimal.NullDecimal) string {
	if !lat.Valid || !lng.Valid {
		return ""
	}
	return lat.Decimal.String() + ", " + lng.Decimal.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
