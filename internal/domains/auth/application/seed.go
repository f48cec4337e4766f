package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/shelter-api/internal/domains/auth/domain"
	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
)

// DefaultStaff lists the accounts every deployment starts with.
var DefaultStaff = []struct {
	Email string
	Role  domain.Role
}{
	{Email: "admin@test.com", Role: domain.RoleAdmin},
	{Email: "staff@test.com", Role: domain.RoleStaff},
}

// SeedStaff creates the default accounts that do not exist yet. Existing accounts keep their password.
func SeedStaff(ctx context.Context, users ports.UserRepository, password string) error {
	for _, seed := range DefaultStaff {
		_, err := users.GetByEmail(ctx, seed.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("lookup %s: %w", seed.Email, err)
		}
		user, err := domain.NewStaffUser(0, seed.Email, password, seed.Role)
		if err != nil {
			return fmt.Errorf("seed %s: %w", seed.Email, err)
		}
		if _, err := users.Save(ctx, user); err != nil {
			return fmt.Errorf("seed %s: %w", seed.Email, err)
		}
	}
	return nil
}
