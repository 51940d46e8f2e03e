package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/types"
)

// VendorService handles vendor CRUD.
type VendorService struct {
	db *gorm.DB
}

func NewVendorService(db *gorm.DB) *VendorService {
	return &VendorService{db: db}
}

func (s *VendorService) CreateVendor(ctx context.Context, req *types.VendorRequest) (*model.Vendor, error) {
	vendor := model.Vendor{
		ID:          uuid.New(),
		Name:        req.Name,
		Category:    req.Category,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (s *VendorService) GetVendor(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := s.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (s *VendorService) UpdateVendor(ctx context.Context, id uuid.UUID, req *types.VendorRequest) (*model.Vendor, error) {
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	vendor.Name = req.Name
	vendor.Category = req.Category
	vendor.ContactName = req.ContactName
	vendor.Email = req.Email
	vendor.Phone = req.Phone
	vendor.Address = req.Address
	vendor.Notes = req.Notes

	if err := s.db.WithContext(ctx).Save(vendor).Error; err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *VendorService) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetVendor(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&model.Vendor{}, "id = ?", id).Error
}

func (s *VendorService) ListVendors(ctx context.Context, category, search string) ([]model.Vendor, error) {
	query := s.db.WithContext(ctx)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_name) LIKE ?", like, like)
	}

	var vendors []model.Vendor
	if err := query.Order("name").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}
