package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/internal/delivery"
	"github.com/fekuna/omnipos-backoffice-service/internal/delivery/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/event"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/product"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/fekuna/omnipos-backoffice-service/pkg/storage"
	"go.uber.org/zap"
)

const (
	maxPhotoDimension = 1200
	photoQuality      = 80
	maxNotesLength    = 1000
)

type Options struct {
	Storage       storage.Uploader
	Bucket        string
	MaxPhotoBytes int64
	Publisher     event.Publisher
	Cache         *cache.RedisClient
}

type deliveryUseCase struct {
	repo   delivery.Repository
	opts   Options
	logger logger.ZapLogger
}

func NewDeliveryUseCase(repo delivery.Repository, opts Options, log logger.ZapLogger) delivery.UseCase {
	if opts.MaxPhotoBytes <= 0 {
		opts.MaxPhotoBytes = 5 << 20
	}
	if opts.Publisher == nil {
		opts.Publisher = event.NopPublisher{}
	}
	return &deliveryUseCase{
		repo:   repo,
		opts:   opts,
		logger: log,
	}
}

func (uc *deliveryUseCase) GetDelivery(ctx context.Context, token string) (*dto.DeliveryDetail, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperror.NotFound("Invalid delivery link")
	}
	d, err := uc.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperror.NotFound("Invalid delivery link")
	}
	return d, nil
}

func (uc *deliveryUseCase) ConfirmDelivery(ctx context.Context, input *dto.ConfirmInput) (*dto.DeliveryDetail, error) {
	if input.Body == nil {
		return nil, apperror.Validation("A delivery photo is required")
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, apperror.Validation("Delivery photo must be an image")
	}
	if input.Size > uc.opts.MaxPhotoBytes {
		return nil, apperror.Validationf("Delivery photo must be at most %d MB", uc.opts.MaxPhotoBytes>>20)
	}
	notes := strings.TrimSpace(input.Notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, apperror.Validationf("Notes must be less than %d characters", maxNotesLength)
	}
	if uc.opts.Storage == nil {
		return nil, apperror.Internal("Photo storage is not configured", errors.New("no uploader"))
	}

	// Fail fast before spending time on the photo; Confirm re-checks under lock.
	d, err := uc.GetDelivery(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if d.Confirmed() {
		return nil, apperror.Conflict("This delivery has already been confirmed")
	}
	if d.OrderStatus == model.StatusCancelled {
		return nil, apperror.Conflict("This order has been cancelled")
	}

	photo, err := CompressPhoto(input.Body)
	if err != nil {
		return nil, apperror.Validation("Delivery photo could not be read as an image")
	}
	name := fmt.Sprintf("%s_%d.jpg", d.ID, time.Now().UnixMilli())
	url, err := uc.opts.Storage.Put(ctx, uc.opts.Bucket, name, bytes.NewReader(photo), int64(len(photo)), "image/jpeg")
	if err != nil {
		return nil, apperror.Internal("Failed to upload delivery photo", err)
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}
	o, dc, err := uc.repo.Confirm(ctx, input.Token, url, notesPtr)
	if err != nil {
		uc.discardPhoto(name)
		return nil, err
	}

	uc.logger.Info("Delivery confirmed",
		zap.String("business_id", o.BusinessID),
		zap.String("order_id", o.ID),
		zap.Int("photo_bytes", len(photo)),
	)
	if err := product.InvalidateLists(ctx, uc.opts.Cache, o.BusinessID); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("business_id", o.BusinessID), zap.Error(err))
	}
	dashboard.InvalidateAsync(uc.opts.Cache, uc.logger, o.BusinessID)
	event.PublishAsync(uc.opts.Publisher, uc.logger,
		event.NewOrderEvent(event.TypeDeliveryConfirmed, o, d.OrderStatus, dc.DriverToken))

	d.DeliveryConfirmation = *dc
	d.OrderStatus = o.Status
	return d, nil
}

// discardPhoto removes an uploaded photo whose confirmation was rejected.
func (uc *deliveryUseCase) discardPhoto(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := uc.opts.Storage.Remove(ctx, uc.opts.Bucket, name); err != nil {
		uc.logger.Warn("failed to remove rejected delivery photo", zap.String("object", name), zap.Error(err))
	}
}

// CompressPhoto fits the image within 1200×1200 and re-encodes it as JPEG.
func CompressPhoto(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	img = imaging.Fit(img, maxPhotoDimension, maxPhotoDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(photoQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
