package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
)

type fakeProducts struct {
	rows []*models.Product
}

func (f *fakeProducts) Create(ctx context.Context, p *models.Product) error {
	p.ID = len(f.rows) + 1
	f.rows = append(f.rows, p)
	return nil
}

func (f *fakeProducts) Get(ctx context.Context, id int) (*models.Product, error) {
	for _, p := range f.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errBoom
}

func (f *fakeProducts) List(ctx context.Context) ([]*models.Product, error)      { return f.rows, nil }
func (f *fakeProducts) GetActive(ctx context.Context) ([]*models.Product, error) { return f.rows, nil }
func (f *fakeProducts) Update(ctx context.Context, p *models.Product) error      { return nil }
func (f *fakeProducts) Delete(ctx context.Context, id int) error                 { return nil }

type fakePayments struct {
	bySale map[int][]*models.Payment
}

func (f *fakePayments) GetBySale(ctx context.Context, saleID int) ([]*models.Payment, error) {
	return f.bySale[saleID], nil
}

type fakeUploader struct {
	key  string
	body []byte
	err  error
}

func (f *fakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = aws.ToString(in.Key)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func newBackupService(up ObjectPutter, prefs *fakePrefs, now time.Time) *BackupService {
	return &BackupService{
		Customers:    newFakeCustomers(&models.Customer{ID: 1, Name: "Ana"}),
		Products:     &fakeProducts{rows: []*models.Product{{ID: 1, Name: "Silla"}}},
		Sales:        &fakeSales{rows: []*models.Sale{{ID: 1, CustomerID: 1}}},
		Items:        &fakeItems{bySale: map[int][]*models.SaleItem{1: {{ProductName: "Silla"}}}},
		Installments: &fakeInstallments{},
		Payments:     &fakePayments{bySale: map[int][]*models.Payment{1: {{ID: 1, SaleID: 1, Amount: 10}}}},
		Invoices:     &fakeInvoices{},
		Calendar:     &fakeCalendar{},
		Prefs:        NewPreferenceService(prefs, nil),
		Uploader:     up,
		Bucket:       "ventas",
		Log:          zerolog.Nop(),
		Now:          func() time.Time { return now },
	}
}

func TestBackupRun(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 4, 5, 0, time.UTC)
	up := &fakeUploader{}
	prefs := &fakePrefs{}
	s := newBackupService(up, prefs, now)

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(up.key, "backups/ventas_20240310_") || res.Key != up.key || res.Size != len(up.body) {
		t.Errorf("key=%s result=%+v", up.key, res)
	}

	var snap Snapshot
	if err := json.Unmarshal(up.body, &snap); err != nil {
		t.Fatalf("uploaded body is not a snapshot: %v", err)
	}
	if len(snap.Customers) != 1 || len(snap.Sales) != 1 || len(snap.Sales[0].Items) != 1 || len(snap.Payments) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if got := prefs.rows[PrefLastBackupDate]; got != now.Format(time.RFC3339) {
		t.Errorf("lastBackupDate = %q", got)
	}
}

func TestBackupRunFailures(t *testing.T) {
	now := date(2024, time.March, 10)

	if _, err := newBackupService(nil, &fakePrefs{}, now).Run(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("no uploader: err = %v", err)
	}

	prefs := &fakePrefs{}
	s := newBackupService(&fakeUploader{err: errBoom}, prefs, now)
	if _, err := s.Run(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("upload failure: err = %v", err)
	}
	if _, ok := prefs.rows[PrefLastBackupDate]; ok {
		t.Error("failed backup must not record lastBackupDate")
	}

	s = newBackupService(&fakeUploader{}, &fakePrefs{}, now)
	s.Sales = &fakeSales{listErr: errBoom}
	if _, err := s.Run(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("snapshot failure: err = %v", err)
	}
}

func TestPreferences(t *testing.T) {
	prefs := &fakePrefs{}
	rec := &recorder{}
	s := NewPreferenceService(prefs, rec)
	ctx := context.Background()

	if v, err := s.Get(ctx, PrefTheme); err != nil || v != "" {
		t.Errorf("unset preference = %q, %v", v, err)
	}
	if _, err := s.Set(ctx, PrefTheme, "dark"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set(ctx, "table.sales.columns", `["date","total"]`); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "table.", "fontSize"} {
		if _, err := s.Set(ctx, key, "x"); !IsValidation(err) {
			t.Errorf("Set(%q): err = %v, want validation error", key, err)
		}
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if all[PrefTheme] != "dark" || len(all) != 2 {
		t.Errorf("all = %v", all)
	}
	if !rec.has("preferences") {
		t.Error("missing preferences notification")
	}
}

func TestProductService(t *testing.T) {
	products := &fakeProducts{}
	s := NewProductService(products, nil, nil)
	ctx := context.Background()

	if _, err := s.CreateProduct(ctx, &models.ProductRequest{Name: "", Price: -1, Stock: -2}); !IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
	ack, err := s.CreateProduct(ctx, &models.ProductRequest{Name: " Lámpara ", Price: 10.005, Stock: 3})
	if err != nil {
		t.Fatal(err)
	}
	p := products.rows[0]
	if ack.ID != p.ID || p.Name != "Lámpara" || !p.IsActive || p.Price != 10.01 {
		t.Errorf("product = %+v", p)
	}
}
