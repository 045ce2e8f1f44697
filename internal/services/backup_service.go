package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"ventas-backend/internal/config"
	"ventas-backend/internal/models"
	"ventas-backend/internal/timeutil"
)

// ObjectPutter is the part of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client for any S3-compatible endpoint.
func NewS3Client(ctx context.Context, cfg config.BackupConfig) (*s3.Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("backup bucket not configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configuring backup client: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Snapshot is the JSON document uploaded by a backup.
type Snapshot struct {
	CreatedAt      time.Time               `json:"created_at"`
	Customers      []*models.Customer      `json:"customers"`
	Products       []*models.Product       `json:"products"`
	Sales          []*models.Sale          `json:"sales"`
	Payments       []*models.Payment       `json:"payments"`
	Invoices       []*models.Invoice       `json:"invoices"`
	CalendarEvents []*models.CalendarEvent `json:"calendar_events"`
	Preferences    []*models.Preference    `json:"preferences"`
}

type BackupResult struct {
	Key       string    `json:"key"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type BackupService struct {
	Customers    CustomerLister
	Products     ProductStore
	Sales        SaleLister
	Items        SaleItemFetcher
	Installments InstallmentFetcher
	Payments     PaymentFetcher
	Invoices     InvoiceStore
	Calendar     CalendarStore
	Prefs        *PreferenceService
	Uploader     ObjectPutter
	Bucket       string
	Log          zerolog.Logger
	Now          func() time.Time
}

// Snapshot reads every entity. Any failed read fails the snapshot.
func (s *BackupService) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{CreatedAt: s.Now()}
	var err error
	if snap.Customers, err = s.Customers.List(ctx); err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	if snap.Products, err = s.Products.List(ctx); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	if snap.Sales, err = s.Sales.List(ctx); err != nil {
		return nil, fmt.Errorf("sales: %w", err)
	}
	for _, sale := range snap.Sales {
		if sale.Items, err = s.Items.GetBySale(ctx, sale.ID); err != nil {
			return nil, fmt.Errorf("items of sale %d: %w", sale.ID, err)
		}
		if sale.Installments, err = s.Installments.GetBySale(ctx, sale.ID); err != nil {
			return nil, fmt.Errorf("installments of sale %d: %w", sale.ID, err)
		}
		payments, err := s.Payments.GetBySale(ctx, sale.ID)
		if err != nil {
			return nil, fmt.Errorf("payments of sale %d: %w", sale.ID, err)
		}
		snap.Payments = append(snap.Payments, payments...)
	}
	if snap.Invoices, err = s.Invoices.GetAllWithDetails(ctx); err != nil {
		return nil, fmt.Errorf("invoices: %w", err)
	}
	if snap.CalendarEvents, err = s.Calendar.GetAll(ctx); err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	if snap.Preferences, err = s.Prefs.Prefs.List(ctx); err != nil {
		return nil, fmt.Errorf("preferences: %w", err)
	}
	return snap, nil
}

// Run uploads a snapshot and records lastBackupDate.
func (s *BackupService) Run(ctx context.Context) (*BackupResult, error) {
	if s.Uploader == nil {
		return nil, ErrUnavailable
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("backups/ventas_%s.json", snap.CreatedAt.In(timeutil.Location()).Format("20060102_150405"))
	_, err = s.Uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading backup: %w", err)
	}

	if _, err := s.Prefs.Set(ctx, PrefLastBackupDate, snap.CreatedAt.Format(time.RFC3339)); err != nil {
		s.Log.Warn().Err(err).Msg("backup uploaded but lastBackupDate was not saved")
	}
	s.Log.Info().Str("key", key).Int("bytes", len(data)).Msg("backup uploaded")
	return &BackupResult{Key: key, Size: len(data), CreatedAt: snap.CreatedAt}, nil
}
