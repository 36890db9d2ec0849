package seeding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

const (
	DefaultLandlordUserID = "22222222-2222-2222-2222-222222222222"
	DefaultLandlordID     = "22222222-2222-2222-2222-222222222223"
	DefaultPropertyID     = "33333333-3333-3333-3333-333333333333"
	DefaultUnitID         = "44444444-4444-4444-4444-444444444444"
)

// Repos is everything the seeders write through.
type Repos struct {
	Users      repositories.UserRepository
	Landlords  repositories.LandlordRepository
	Tenants    repositories.TenantRepository
	Properties repositories.PropertyRepository
	Units      repositories.UnitRepository
	Leases     repositories.LeaseRepository
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SeedDefaultLandlord creates the demo landlord with one property and unit if needed.
func SeedDefaultLandlord(ctx context.Context, r Repos) error {
	landlordID := uuid.MustParse(DefaultLandlordID)

	if existing, err := r.Landlords.GetByID(ctx, landlordID); err != nil {
		return fmt.Errorf("check existing landlord: %w", err)
	} else if existing != nil {
		utils.Logger.Info("seeding: default landlord already present; skipping")
		return nil
	}

	user := &models.User{
		ID:          uuid.MustParse(DefaultLandlordUserID),
		Email:       "landlord@keystonepm.com",
		PhoneNumber: utils.Ptr("+12565550000"),
		FirstName:   "Demo",
		LastName:    "Landlord",
		Role:        models.RoleLandlord,
		Status:      models.UserStatusActive,
	}
	landlord := &models.Landlord{
		ID:              landlordID,
		UserID:          user.ID,
		BusinessName:    "Demo Property Management",
		BusinessAddress: "30 Gates Mill St NW",
		City:            "Huntsville",
		State:           "AL",
		ZipCode:         "35806",
	}
	property := &models.Property{
		ID:           uuid.MustParse(DefaultPropertyID),
		LandlordID:   landlordID,
		PropertyName: "Gates Mill Apartments",
		Address:      "30 Gates Mill St NW",
		City:         "Huntsville",
		State:        "AL",
		ZipCode:      "35806",
		TimeZone:     "America/Chicago",
	}
	unit := &models.Unit{
		ID:         uuid.MustParse(DefaultUnitID),
		PropertyID: property.ID,
		UnitNumber: "101",
		Bedrooms:   2,
		Bathrooms:  1.5,
	}

	steps := []struct {
		what string
		run  func() error
	}{
		{"user", func() error { return r.Users.Create(ctx, user) }},
		{"landlord", func() error { return r.Landlords.Create(ctx, landlord) }},
		{"property", func() error { return r.Properties.Create(ctx, property) }},
		{"unit", func() error { return r.Units.Create(ctx, unit) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			if isUniqueViolation(err) {
				utils.Logger.Infof("seeding: default %s already exists; skipping", s.what)
				continue
			}
			return fmt.Errorf("create default %s: %w", s.what, err)
		}
	}

	utils.Logger.Infof("seeding: created default landlord id=%s", landlordID)
	return nil
}
