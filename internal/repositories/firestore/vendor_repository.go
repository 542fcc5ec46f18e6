package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/foodchainx/api/internal/domain"
	pfirestore "github.com/foodchainx/api/internal/platform/firestore"
	"github.com/foodchainx/api/internal/repositories"
)

const vendorCollection = "vendorDetails"

// VendorRepository persists vendor identity records in Firestore.
type VendorRepository struct {
	base *pfirestore.BaseRepository[vendorDocument]
}

// NewVendorRepository constructs a Firestore-backed vendor repository.
func NewVendorRepository(provider *pfirestore.Provider) (*VendorRepository, error) {
	if provider == nil {
		return nil, errors.New("vendor repository requires firestore provider")
	}
	return &VendorRepository{
		base: pfirestore.NewBaseRepository[vendorDocument](provider, vendorCollection),
	}, nil
}

// Upsert stores the vendor profile under its record ID.
func (r *VendorRepository) Upsert(ctx context.Context, vendor domain.Vendor) error {
	id := strings.TrimSpace(vendor.ID)
	if id == "" {
		return errors.New("vendor repository: vendor id is required")
	}
	return r.base.Set(ctx, id, encodeVendor(vendor))
}

// FindByID loads a vendor by its record ID.
func (r *VendorRepository) FindByID(ctx context.Context, vendorID string) (domain.Vendor, error) {
	doc, err := r.base.Get(ctx, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// FindByUserID loads the vendor profile owned by the given platform user.
func (r *VendorRepository) FindByUserID(ctx context.Context, userID string) (domain.Vendor, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Vendor{}, errors.New("vendor repository: user id is required")
	}
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("userId", "==", uid).Limit(1)
	})
	if err != nil {
		return domain.Vendor{}, err
	}
	if len(docs) == 0 {
		return domain.Vendor{}, pfirestore.WrapError("vendorDetails.find_by_user",
			status.Error(codes.NotFound, "vendor profile not found"))
	}
	return docs[0].Data.toDomain(docs[0].ID), nil
}

// List returns all vendor profiles ordered by business name.
func (r *VendorRepository) List(ctx context.Context) ([]domain.Vendor, error) {
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.OrderBy("businessName", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	vendors := make([]domain.Vendor, 0, len(docs))
	for _, doc := range docs {
		vendors = append(vendors, doc.Data.toDomain(doc.ID))
	}
	return vendors, nil
}

type vendorDocument struct {
	BusinessName     string               `firestore:"businessName"`
	OwnerName        string               `firestore:"ownerName,omitempty"`
	BusinessType     string               `firestore:"businessType,omitempty"`
	Contact          domain.VendorContact `firestore:"contact"`
	Address          string               `firestore:"address,omitempty"`
	SupplyCategories []string             `firestore:"supplyCategories,omitempty"`
	OperationalArea  string               `firestore:"operationalArea,omitempty"`
	LicenseNumber    string               `firestore:"licenseNumber,omitempty"`
	YearsInBusiness  int                  `firestore:"yearsInBusiness,omitempty"`
	AvgCapacity      int                  `firestore:"avgCapacity,omitempty"`
	UserID           string               `firestore:"userId"`
	CreatedAt        time.Time            `firestore:"createdAt"`
	UpdatedAt        time.Time            `firestore:"updatedAt"`
}

func encodeVendor(vendor domain.Vendor) vendorDocument {
	return vendorDocument{
		BusinessName:     strings.TrimSpace(vendor.BusinessName),
		OwnerName:        strings.TrimSpace(vendor.OwnerName),
		BusinessType:     strings.TrimSpace(vendor.BusinessType),
		Contact:          vendor.Contact,
		Address:          strings.TrimSpace(vendor.Address),
		SupplyCategories: vendor.SupplyCategories,
		OperationalArea:  strings.TrimSpace(vendor.OperationalArea),
		LicenseNumber:    strings.TrimSpace(vendor.LicenseNumber),
		YearsInBusiness:  vendor.YearsInBusiness,
		AvgCapacity:      vendor.AvgCapacity,
		UserID:           strings.TrimSpace(vendor.UserID),
		CreatedAt:        vendor.CreatedAt.UTC(),
		UpdatedAt:        vendor.UpdatedAt.UTC(),
	}
}

func (d vendorDocument) toDomain(id string) domain.Vendor {
	return domain.Vendor{
		ID:               id,
		BusinessName:     d.BusinessName,
		OwnerName:        d.OwnerName,
		BusinessType:     d.BusinessType,
		Contact:          d.Contact,
		Address:          d.Address,
		SupplyCategories: d.SupplyCategories,
		OperationalArea:  d.OperationalArea,
		LicenseNumber:    d.LicenseNumber,
		YearsInBusiness:  d.YearsInBusiness,
		AvgCapacity:      d.AvgCapacity,
		UserID:           d.UserID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// Ensure interface compliance.
var _ repositories.VendorRepository = (*VendorRepository)(nil)
