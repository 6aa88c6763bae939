package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type demoUserSeed struct {
	ID       string
	FullName string
	Egn      string
	Gender   string
	Dob      string
	Email    string
	Phone    string
}

var demoUsers = []demoUserSeed{
	{ID: "Qm3xT8vLk2RzW9pNa4YcE7hJs1UfGd6B", FullName: "Иван Петров Иванов", Egn: "8001010000", Gender: "male", Dob: "1980-01-01", Email: "ivan.ivanov+seed1@example.com", Phone: "0888000001"},
	{ID: "Zk7Wc2Pq9LmX4tRb8NvY1sHd6JfA3GeU", FullName: "Мария Георгиева Петрова", Egn: "9002020000", Gender: "female", Dob: "1990-02-02", Email: "maria.petrova+seed2@example.com", Phone: "0888000002"},
	{ID: "Hn5Yd8Rw1KpV3zQm7TcL2bXs9FgE4JaU", FullName: "Георги Николов Димитров", Egn: "7503030000", Gender: "male", Dob: "1975-03-03", Email: "georgi.dimitrov+seed3@example.com", Phone: "0888000003"},
}

const demoAdminID = "Ad9Mn2Xq7Lp4Wz8Rt1Kv6Yc3Hb5Js0Ef"

func hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// SeedAdmin upserts the administrator account by username.
func SeedAdmin(ctx context.Context, admins store.AdminStore, username, password string, logger logrus.FieldLogger) error {
	h, err := hash(password)
	if err != nil {
		return err
	}

	err = admins.Upsert(ctx, &types.Admin{
		ID:           demoAdminID,
		Username:     username,
		PasswordHash: h,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert admin %s: %w", username, err)
	}

	logger.WithField("username", username).Info("admin seeded")
	return nil
}

// SeedDemoUsers upserts the demo citizens by egn. All of them share
// password.
func SeedDemoUsers(ctx context.Context, users store.UserStore, password string, logger logrus.FieldLogger) error {
	h, err := hash(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	seeded := 0
	for _, demo := range demoUsers {
		dob, err := time.Parse(time.DateOnly, demo.Dob)
		if err != nil {
			return fmt.Errorf("invalid dob for demo user %s: %w", demo.Egn, err)
		}

		err = users.Upsert(ctx, &types.User{
			ID:           demo.ID,
			FullName:     demo.FullName,
			Egn:          demo.Egn,
			Gender:       demo.Gender,
			Dob:          dob,
			Email:        demo.Email,
			Phone:        demo.Phone,
			PasswordHash: h,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert demo user %s: %w", demo.Egn, err)
		}
		seeded++
	}

	logger.WithField("count", seeded).Info("demo users seeded")
	return nil
}
