package repository

import (
	"context"
	"time"

	"github.com/fitcore/membership-api/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// BranchRepository reads per-branch settings. Settings change rarely and
// are consulted on every lifecycle operation, so reads go through a
// short-lived in-process cache.
type BranchRepository interface {
	GetSettings(ctx context.Context, tenantID, branchID string) (*models.BranchSettings, error)
	SaveSettings(ctx context.Context, settings *models.BranchSettings) error
}

type branchRepository struct {
	db    *gorm.DB
	cache *gocache.Cache
}

// NewBranchRepository creates a new branch settings repository
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{
		db:    db,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (r *branchRepository) GetSettings(ctx context.Context, tenantID, branchID string) (*models.BranchSettings, error) {
	key := tenantID + "/" + branchID
	if cached, ok := r.cache.Get(key); ok {
		settings := cached.(models.BranchSettings)
		return &settings, nil
	}

	var settings models.BranchSettings
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID).
		First(&settings).Error
	if err != nil {
		if IsNotFound(err) {
			// Branches without a settings row run with defaults.
			settings = models.BranchSettings{
				TenantID: tenantID,
				BranchID: branchID,
				Timezone: "UTC",
			}
			r.cache.Set(key, settings, gocache.DefaultExpiration)
			return &settings, nil
		}
		return nil, err
	}

	r.cache.Set(key, settings, gocache.DefaultExpiration)
	return &settings, nil
}

func (r *branchRepository) SaveSettings(ctx context.Context, settings *models.BranchSettings) error {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return err
	}
	r.cache.Delete(settings.TenantID + "/" + settings.BranchID)
	return nil
}
