package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
)

// ReportService builds downloadable XLSX reports from consumption history.
type ReportService struct {
	db    *gorm.DB
	clock Clock
}

func NewReportService(db *gorm.DB, clock Clock) *ReportService {
	if clock == nil {
		clock = systemClock{}
	}
	return &ReportService{db: db, clock: clock}
}

// DefaultRange is the trailing month ending now.
func (s *ReportService) DefaultRange() (time.Time, time.Time) {
	to := s.clock.Now()
	return to.AddDate(0, -1, 0), to
}

var reportHeaders = []string{"Date", "Item", "Category", "Kind", "Reason", "Quantity", "Unit", "Cost"}

// ConsumptionXLSX renders consumption records between from and to as an XLSX
// workbook, one row per record plus a totals row.
func (s *ReportService) ConsumptionXLSX(ctx context.Context, from, to time.Time) (*bytes.Buffer, error) {
	var records []model.ConsumptionRecord
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Consumption"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	for i, h := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	var totalCost float64
	for i, r := range records {
		row := i + 2
		values := []interface{}{
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.SupplyName,
			r.Category,
			r.Kind,
			r.Reason,
			r.Quantity,
			r.Unit,
			r.CostValue,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		totalCost += r.CostValue
	}

	totalRow := len(records) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(len(reportHeaders), totalRow)
	if err := f.SetCellValue(sheet, labelCell, "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, valueCell, totalCost); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf, nil
}
