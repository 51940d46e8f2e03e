package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/types"
)

// ErrInsufficientStock is returned when a waste entry exceeds stock on hand.
var ErrInsufficientStock = errors.New("quantity exceeds stock on hand")

// SupplyFilter narrows food-supply listings.
type SupplyFilter struct {
	Search   string
	Category string
	VendorID *uuid.UUID
	LowStock bool
}

// SupplyService handles food-supply stock operations.
type SupplyService struct {
	db     *gorm.DB
	clock  Clock
	logger *zap.Logger
}

func NewSupplyService(db *gorm.DB, clock Clock, logger *zap.Logger) *SupplyService {
	if clock == nil {
		clock = systemClock{}
	}
	return &SupplyService{db: db, clock: clock, logger: logger}
}

// CreateSupply stores a new supply record.
func (s *SupplyService) CreateSupply(ctx context.Context, supply *model.FoodSupply) (*model.FoodSupply, error) {
	if supply.ID == uuid.Nil {
		supply.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(supply).Error; err != nil {
		return nil, err
	}
	return supply, nil
}

// GetSupply retrieves a supply record by ID.
func (s *SupplyService) GetSupply(ctx context.Context, id uuid.UUID) (*model.FoodSupply, error) {
	var supply model.FoodSupply
	if err := s.db.WithContext(ctx).First(&supply, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

// UpdateSupply applies changes to a supply record.
func (s *SupplyService) UpdateSupply(ctx context.Context, id uuid.UUID, supply *model.FoodSupply) (*model.FoodSupply, error) {
	if _, err := s.GetSupply(ctx, id); err != nil {
		return nil, err
	}
	supply.ID = id
	if err := s.db.WithContext(ctx).Model(&model.FoodSupply{}).Where("id = ?", id).Updates(supply).Error; err != nil {
		return nil, err
	}
	return s.GetSupply(ctx, id)
}

// DeleteSupply removes a supply record.
func (s *SupplyService) DeleteSupply(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetSupply(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&model.FoodSupply{}, "id = ?", id).Error
}

// ListSupplies lists supplies matching the filter.
func (s *SupplyService) ListSupplies(ctx context.Context, filter SupplyFilter) ([]model.FoodSupply, error) {
	query := s.db.WithContext(ctx)

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.LowStock {
		query = query.Where("quantity < min_threshold")
	}

	var supplies []model.FoodSupply
	if err := query.Order("name").Find(&supplies).Error; err != nil {
		return nil, err
	}
	return supplies, nil
}

// Refill increases stock on hand, optionally updating price and expiry.
func (s *SupplyService) Refill(ctx context.Context, id uuid.UUID, req *types.RefillRequest) (*model.FoodSupply, error) {
	supply, err := s.GetSupply(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"quantity": gorm.Expr("quantity + ?", req.Quantity),
	}
	if req.PricePerUnit != nil {
		updates["price_per_unit"] = *req.PricePerUnit
	}
	if req.ExpirationDate != nil {
		updates["expiration_date"] = *req.ExpirationDate
	}

	if err := s.db.WithContext(ctx).Model(&model.FoodSupply{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.logger.Info("supply refilled",
		zap.String("supply_id", supply.ID.String()),
		zap.Float64("quantity", req.Quantity))
	return s.GetSupply(ctx, id)
}

// RecordWaste decrements stock and writes a wasted consumption record with
// the given reason code.
func (s *SupplyService) RecordWaste(ctx context.Context, id uuid.UUID, actorID uuid.UUID, req *types.WasteRequest) (*model.ConsumptionRecord, error) {
	supply, err := s.GetSupply(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Quantity > supply.Quantity {
		return nil, ErrInsufficientStock
	}

	record := model.ConsumptionRecord{
		ID:           uuid.New(),
		FoodSupplyID: supply.ID,
		SupplyName:   supply.Name,
		Category:     supply.Category,
		Quantity:     req.Quantity,
		Unit:         supply.Unit,
		CostValue:    req.Quantity * supply.PricePerUnit,
		Kind:         model.ConsumptionWasted,
		Reason:       req.Reason,
		ActorID:      actorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.FoodSupply{}).Where("id = ?", id).
			Update("quantity", gorm.Expr("quantity - ?", req.Quantity)).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("waste recorded",
		zap.String("supply_id", supply.ID.String()),
		zap.String("reason", req.Reason),
		zap.Float64("quantity", req.Quantity))
	return &record, nil
}

// ListExpiring returns supplies whose expiration date falls within the window.
func (s *SupplyService) ListExpiring(ctx context.Context, within time.Duration) ([]model.FoodSupply, error) {
	now := s.clock.Now()
	var supplies []model.FoodSupply
	err := s.db.WithContext(ctx).
		Where("expiration_date IS NOT NULL AND expiration_date <= ?", now.Add(within)).
		Order("expiration_date").
		Find(&supplies).Error
	if err != nil {
		return nil, err
	}
	return supplies, nil
}

// IssueBarcode assigns a new barcode to a supply record, replacing any
// existing one.
func (s *SupplyService) IssueBarcode(ctx context.Context, id uuid.UUID) (*model.FoodSupply, error) {
	supply, err := s.GetSupply(ctx, id)
	if err != nil {
		return nil, err
	}

	code := fmt.Sprintf("FS-%s", strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12]))
	if err := s.db.WithContext(ctx).Model(&model.FoodSupply{}).Where("id = ?", id).
		Update("barcode", code).Error; err != nil {
		return nil, err
	}

	supply.Barcode = code
	return supply, nil
}

// ImportXLSX reads supply rows from the first sheet of an XLSX workbook.
// Expected headers: name, category, quantity, unit, price_per_unit,
// expiration_date (RFC 3339 date, optional). Rows matching an existing supply
// name add to its stock; others create new supplies. Returns created and
// updated counts.
func (s *SupplyService) ImportXLSX(ctx context.Context, r io.Reader) (int, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, 0, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.Rows(sheet)
	if err != nil {
		return 0, 0, err
	}

	if !rows.Next() {
		return 0, 0, fmt.Errorf("xlsx empty sheet")
	}
	headers, _ := rows.Columns()
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "quantity"} {
		if _, ok := col[required]; !ok {
			return 0, 0, fmt.Errorf("xlsx missing required column %q", required)
		}
	}

	cell := func(cols []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(cols) {
			return ""
		}
		return strings.TrimSpace(cols[i])
	}

	// A bad row rejects the whole workbook, so nothing is half-applied.
	created, updated := 0, 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line := 1
		for rows.Next() {
			line++
			cols, _ := rows.Columns()

			name := cell(cols, "name")
			if name == "" {
				continue
			}
			qty, err := strconv.ParseFloat(cell(cols, "quantity"), 64)
			if err != nil {
				return fmt.Errorf("row %d: invalid quantity: %w", line, err)
			}

			var expiry *time.Time
			if v := cell(cols, "expiration_date"); v != "" {
				t, err := time.Parse("2006-01-02", v)
				if err != nil {
					return fmt.Errorf("row %d: invalid expiration_date: %w", line, err)
				}
				expiry = &t
			}

			var price float64
			if v := cell(cols, "price_per_unit"); v != "" {
				price, err = strconv.ParseFloat(v, 64)
				if err != nil {
					return fmt.Errorf("row %d: invalid price_per_unit: %w", line, err)
				}
			}

			var existing model.FoodSupply
			err = tx.Where("name = ?", name).First(&existing).Error
			switch {
			case err == nil:
				updates := map[string]interface{}{
					"quantity": gorm.Expr("quantity + ?", qty),
				}
				if price > 0 {
					updates["price_per_unit"] = price
				}
				if expiry != nil {
					updates["expiration_date"] = *expiry
				}
				if err := tx.Model(&model.FoodSupply{}).
					Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
					return err
				}
				updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				supply := model.FoodSupply{
					ID:             uuid.New(),
					Name:           name,
					Category:       cell(cols, "category"),
					Quantity:       qty,
					Unit:           cell(cols, "unit"),
					PricePerUnit:   price,
					ExpirationDate: expiry,
				}
				if err := tx.Create(&supply).Error; err != nil {
					return err
				}
				created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	s.logger.Info("supply import finished", zap.Int("created", created), zap.Int("updated", updated))
	return created, updated, nil
}
