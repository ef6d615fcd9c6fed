package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	orderdto "github.com/fekuna/omnipos-backoffice-service/internal/order/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/report"
	"github.com/fekuna/omnipos-backoffice-service/internal/report/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxRangeDays = 366

type reportUseCase struct {
	orders     report.OrderSource
	businesses report.BusinessSource
	logger     logger.ZapLogger
	now        func() time.Time
}

func NewReportUseCase(orders report.OrderSource, businesses report.BusinessSource, log logger.ZapLogger) report.UseCase {
	return &reportUseCase{
		orders:     orders,
		businesses: businesses,
		logger:     log,
		now:        time.Now,
	}
}

func (uc *reportUseCase) OrdersPDF(ctx context.Context, input *dto.OrdersReportInput) (*dto.Document, error) {
	if input.To.Before(input.From) {
		return nil, apperror.Validation("The end date must not be before the start date")
	}
	if input.To.Sub(input.From) > maxRangeDays*24*time.Hour {
		return nil, apperror.Validationf("Reports can cover at most %d days", maxRangeDays)
	}

	biz, err := uc.businesses.FindByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if biz == nil {
		return nil, apperror.NotFound("Business not found")
	}

	from, to := input.From, input.To
	orders, _, err := uc.orders.FindAll(ctx, &orderdto.OrderFilters{
		BusinessID: input.BusinessID,
		DateFrom:   &from,
		DateTo:     &to,
	})
	if err != nil {
		return nil, err
	}

	content, err := renderOrders(biz, orders, from, to, uc.now())
	if err != nil {
		return nil, apperror.Internal("Failed to render report", err)
	}
	uc.logger.Info("Orders report generated",
		zap.String("business_id", input.BusinessID),
		zap.Int("orders", len(orders)),
		zap.Int("bytes", len(content)))

	return &dto.Document{
		Filename: fmt.Sprintf("orders_%s_%s.pdf", from.Format(time.DateOnly), to.Format(time.DateOnly)),
		Content:  content,
	}, nil
}

// Summary holds the figures printed under the order table.
type Summary struct {
	Orders           int
	Completed        int
	Cancelled        int
	CompletedRevenue decimal.Decimal
}

func Summarize(orders []model.Order) Summary {
	s := Summary{Orders: len(orders), CompletedRevenue: decimal.Zero}
	for _, o := range orders {
		switch o.Status {
		case model.StatusCompleted:
			s.Completed++
			s.CompletedRevenue = s.CompletedRevenue.Add(o.SalePrice)
		case model.StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

func renderOrders(biz *model.Business, orders []model.Order, from, to, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; symbols such as € and £ need translating
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string {
		return tr(biz.CurrencySymbol + d.StringFixed(2))
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(biz.Name+" - Orders Report"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Date Range: %s to %s", from.Format(time.DateOnly), to.Format(time.DateOnly)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Generated: "+generated.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{25, 45, 45, 15, 35, 25}
	headers := []string{"Date", "Client", "Product", "Qty", "Status", "Total"}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, o := range orders {
		pdf.CellFormat(widths[0], 7, o.CreatedAt.Format(time.DateOnly), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 7, tr(truncate(o.ClientName, 28)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(truncate(o.ProductName, 28)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", o.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 7, string(o.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 7, money(o.SalePrice), "1", 1, "R", false, 0, "")
	}
	if len(orders) == 0 {
		pdf.CellFormat(0, 8, "No orders in this period.", "1", 1, "C", false, 0, "")
	}

	s := Summarize(orders)
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Orders: %d  Completed: %d  Cancelled: %d", s.Orders, s.Completed, s.Cancelled), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Completed Revenue: "+money(s.CompletedRevenue), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
