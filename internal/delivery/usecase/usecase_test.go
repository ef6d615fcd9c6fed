package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/disintegration/imaging"
	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/delivery/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/product"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type fakeRepo struct {
	details    map[string]*dto.DeliveryDetail
	confirmed  int
	confirmErr error
}

func (f *fakeRepo) FindByToken(_ context.Context, token string) (*dto.DeliveryDetail, error) {
	if d, ok := f.details[token]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) Confirm(_ context.Context, token, photoURL string, notes *string) (*model.Order, *model.DeliveryConfirmation, error) {
	if f.confirmErr != nil {
		return nil, nil, f.confirmErr
	}
	d := f.details[token]
	now := time.Now()
	d.ConfirmedAt = &now
	d.DeliveryPhotoURL = &photoURL
	d.DriverNotes = notes
	d.OrderStatus = model.StatusCompleted
	f.confirmed++

	o := &model.Order{BusinessID: d.BusinessID, ClientName: d.ClientName, Status: model.StatusCompleted}
	o.ID = d.OrderID
	dc := d.DeliveryConfirmation
	return o, &dc, nil
}

type fakeUploader struct {
	bucket, name, contentType string
	body                      []byte
	removed                   []string
}

func (u *fakeUploader) Remove(_ context.Context, bucket, name string) error {
	u.removed = append(u.removed, bucket+"/"+name)
	return nil
}

func (u *fakeUploader) Put(_ context.Context, bucket, name string, r io.Reader, _ int64, contentType string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.bucket, u.name, u.contentType, u.body = bucket, name, contentType, b
	return "https://files.example.com/" + bucket + "/" + name, nil
}

func newRepo() *fakeRepo {
	return &fakeRepo{details: map[string]*dto.DeliveryDetail{
		"tok": {
			DeliveryConfirmation: model.DeliveryConfirmation{
				ID: "dc1", BusinessID: "b1", OrderID: "o1", DriverToken: "tok",
			},
			ClientName:  "Ana",
			ProductName: "Bread",
			Quantity:    2,
			OrderStatus: model.StatusReadyForDelivery,
		},
	}}
}

func pngPhoto(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestConfirmDelivery(t *testing.T) {
	repo := newRepo()
	up := &fakeUploader{}
	uc := NewDeliveryUseCase(repo, Options{Storage: up, Bucket: "delivery-photos"}, logger.NewNop())

	photo := pngPhoto(t, 2400, 1200)
	d, err := uc.ConfirmDelivery(context.Background(), &dto.ConfirmInput{
		Token:       "tok",
		Notes:       "  left at the door  ",
		ContentType: "image/png",
		Size:        int64(len(photo)),
		Body:        bytes.NewReader(photo),
	})
	if err != nil {
		t.Fatalf("ConfirmDelivery: %v", err)
	}
	if !d.Confirmed() || d.OrderStatus != model.StatusCompleted {
		t.Fatalf("detail = %+v", d)
	}
	if d.DriverNotes == nil || *d.DriverNotes != "left at the door" {
		t.Fatalf("notes = %v", d.DriverNotes)
	}

	if up.bucket != "delivery-photos" || up.contentType != "image/jpeg" {
		t.Fatalf("upload bucket=%q type=%q", up.bucket, up.contentType)
	}
	if !strings.HasPrefix(up.name, "dc1_") || !strings.HasSuffix(up.name, ".jpg") {
		t.Fatalf("object name = %q", up.name)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(up.body))
	if err != nil {
		t.Fatalf("uploaded photo: %v", err)
	}
	if format != "jpeg" || cfg.Width != 1200 || cfg.Height != 600 {
		t.Fatalf("uploaded %s %dx%d", format, cfg.Width, cfg.Height)
	}

	_, err = uc.ConfirmDelivery(context.Background(), &dto.ConfirmInput{
		Token: "tok", ContentType: "image/png", Size: int64(len(photo)), Body: bytes.NewReader(photo),
	})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("second confirm: got %v, want conflict", err)
	}
	if repo.confirmed != 1 {
		t.Fatalf("confirmed %d times", repo.confirmed)
	}
}

func TestConfirmDeliveryRejects(t *testing.T) {
	photo := pngPhoto(t, 10, 10)
	tests := []struct {
		name   string
		status model.OrderStatus
		input  dto.ConfirmInput
		kind   apperror.Kind
	}{
		{
			name:  "unknown token",
			input: dto.ConfirmInput{Token: "nope", ContentType: "image/png", Size: 10, Body: bytes.NewReader(photo)},
			kind:  apperror.KindNotFound,
		},
		{
			name:  "missing photo",
			input: dto.ConfirmInput{Token: "tok"},
			kind:  apperror.KindValidation,
		},
		{
			name:  "not an image",
			input: dto.ConfirmInput{Token: "tok", ContentType: "application/pdf", Size: 10, Body: strings.NewReader("%PDF")},
			kind:  apperror.KindValidation,
		},
		{
			name:  "too large",
			input: dto.ConfirmInput{Token: "tok", ContentType: "image/png", Size: 6 << 20, Body: bytes.NewReader(photo)},
			kind:  apperror.KindValidation,
		},
		{
			name:  "garbage bytes",
			input: dto.ConfirmInput{Token: "tok", ContentType: "image/png", Size: 4, Body: strings.NewReader("nope")},
			kind:  apperror.KindValidation,
		},
		{
			name:   "cancelled order",
			status: model.StatusCancelled,
			input:  dto.ConfirmInput{Token: "tok", ContentType: "image/png", Size: 10, Body: bytes.NewReader(photo)},
			kind:   apperror.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo()
			if tt.status != "" {
				repo.details["tok"].OrderStatus = tt.status
			}
			up := &fakeUploader{}
			uc := NewDeliveryUseCase(repo, Options{Storage: up, Bucket: "delivery-photos"}, logger.NewNop())

			in := tt.input
			_, err := uc.ConfirmDelivery(context.Background(), &in)
			if !apperror.Is(err, tt.kind) {
				t.Fatalf("got %v, want kind %v", err, tt.kind)
			}
			if repo.confirmed != 0 || up.name != "" {
				t.Fatalf("nothing should be stored on rejection")
			}
		})
	}
}

func TestConfirmDeliveryRemovesRejectedPhoto(t *testing.T) {
	repo := newRepo()
	// Another driver confirmed between the pre-check and the locked update.
	repo.confirmErr = apperror.Conflict("This delivery has already been confirmed")
	up := &fakeUploader{}
	uc := NewDeliveryUseCase(repo, Options{Storage: up, Bucket: "delivery-photos"}, logger.NewNop())

	photo := pngPhoto(t, 10, 10)
	_, err := uc.ConfirmDelivery(context.Background(), &dto.ConfirmInput{
		Token: "tok", ContentType: "image/png", Size: int64(len(photo)), Body: bytes.NewReader(photo),
	})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if len(up.removed) != 1 || up.removed[0] != "delivery-photos/"+up.name {
		t.Fatalf("removed = %v, uploaded %q", up.removed, up.name)
	}
}

func TestConfirmDeliveryDropsProductLists(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	mr.Set(product.ListCachePrefix("b1")+"page1", "{}")

	up := &fakeUploader{}
	uc := NewDeliveryUseCase(newRepo(), Options{Storage: up, Bucket: "delivery-photos", Cache: rc}, logger.NewNop())

	photo := pngPhoto(t, 10, 10)
	if _, err := uc.ConfirmDelivery(context.Background(), &dto.ConfirmInput{
		Token: "tok", ContentType: "image/png", Size: int64(len(photo)), Body: bytes.NewReader(photo),
	}); err != nil {
		t.Fatalf("ConfirmDelivery: %v", err)
	}
	if mr.Exists(product.ListCachePrefix("b1") + "page1") {
		t.Fatal("product lists should be dropped once the order completes")
	}
	if len(up.removed) != 0 {
		t.Fatalf("accepted photo removed: %v", up.removed)
	}
}

func TestGetDelivery(t *testing.T) {
	uc := NewDeliveryUseCase(newRepo(), Options{}, logger.NewNop())

	d, err := uc.GetDelivery(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetDelivery: %v", err)
	}
	if d.ProductName != "Bread" || d.Confirmed() {
		t.Fatalf("detail = %+v", d)
	}

	for _, token := range []string{"", "missing"} {
		if _, err := uc.GetDelivery(context.Background(), token); !apperror.Is(err, apperror.KindNotFound) {
			t.Fatalf("token %q: got %v, want not found", token, err)
		}
	}
}
