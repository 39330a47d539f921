package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warp/leave-tracker/auth"
	"github.com/warp/leave-tracker/leave"
)

// Seed loads the demo accounts and a few sample leave requests. Intended for
// local development only; it is a no-op when any user already exists.
func (s *Store) Seed(ctx context.Context) error {
	existing, err := s.GetUserByEmail(ctx, "manager@company.com")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	managerHash, err := auth.HashPassword("manager123")
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}
	employeeHash, err := auth.HashPassword("employee123")
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	now := time.Now().UTC()

	type seedUser struct {
		name       string
		email      string
		hash       string
		role       leave.Role
		department string
		vacation   int
		sick       int
	}

	users := []seedUser{
		{"John Manager", "manager@company.com", managerHash, leave.RoleManager, "Engineering", 25, 15},
		{"Lisa Marketing Manager", "lisa@company.com", managerHash, leave.RoleManager, "Marketing", 25, 15},
		{"Robert Sales Manager", "robert@company.com", managerHash, leave.RoleManager, "Sales", 25, 15},
		{"Sarah Smith", "sarah@company.com", employeeHash, leave.RoleEmployee, "Engineering", 18, 8},
		{"Mike Johnson", "mike@company.com", employeeHash, leave.RoleEmployee, "Marketing", 20, 10},
		{"Emily Davis", "emily@company.com", employeeHash, leave.RoleEmployee, "Sales", 15, 7},
	}

	ids := make(map[string]string, len(users))
	for _, u := range users {
		id := uuid.NewString()
		ids[u.email] = id
		err := s.CreateUser(ctx, leave.User{
			ID:              id,
			Name:            u.name,
			Email:           u.email,
			PasswordHash:    u.hash,
			Role:            u.role,
			Department:      u.department,
			VacationBalance: u.vacation,
			SickBalance:     u.sick,
			CreatedAt:       now,
		})
		if err != nil {
			return err
		}
	}

	decidedAt := now.AddDate(0, 0, -2)
	leaves := []leave.Leave{
		{
			ID:          uuid.NewString(),
			UserID:      ids["sarah@company.com"],
			UserName:    "Sarah Smith",
			Department:  "Engineering",
			LeaveType:   leave.TypeVacation,
			StartDate:   now.AddDate(0, 0, 10),
			EndDate:     now.AddDate(0, 0, 14),
			Reason:      "Family vacation to Hawaii",
			Status:      leave.StatusPending,
			SubmittedAt: now,
		},
		{
			ID:             uuid.NewString(),
			UserID:         ids["mike@company.com"],
			UserName:       "Mike Johnson",
			Department:     "Marketing",
			LeaveType:      leave.TypeSick,
			StartDate:      now.AddDate(0, 0, -2),
			EndDate:        now.AddDate(0, 0, -2),
			Reason:         "Medical appointment",
			Status:         leave.StatusApproved,
			SubmittedAt:    now.AddDate(0, 0, -3),
			ManagerComment: "Approved. Get well soon!",
			ApprovedBy:     "Lisa Marketing Manager",
			ApprovedAt:     &decidedAt,
		},
		{
			ID:          uuid.NewString(),
			UserID:      ids["emily@company.com"],
			UserName:    "Emily Davis",
			Department:  "Sales",
			LeaveType:   leave.TypeVacation,
			StartDate:   now.AddDate(0, 0, 30),
			EndDate:     now.AddDate(0, 0, 35),
			Reason:      "Summer holiday",
			Status:      leave.StatusPending,
			SubmittedAt: now,
		},
	}

	for _, l := range leaves {
		if err := s.CreateLeave(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
