/*
main.go - Development data seeder

PURPOSE:
  Populates a fresh database with an admin account, an HR account, and a
  handful of employees so the API is usable immediately after checkout.
  Safe to skip in production; running it twice fails on the duplicate
  admin email.

USAGE:
  HR_DB_PATH=./data/hr.db go run ./cmd/seed
*/
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/waqtek/hr-ledger/auth"
	"github.com/waqtek/hr-ledger/config"
	"github.com/waqtek/hr-ledger/ledger"
	"github.com/waqtek/hr-ledger/store/sqlite"
)

type seedEmployee struct {
	email      string
	password   string
	role       ledger.Role
	fullName   string
	department ledger.Department
	position   string
	balance    float64
}

var seedEmployees = []seedEmployee{
	{"hr@waqtek.com", "hr123", ledger.RoleHR, "Hannah Reyes", ledger.DeptHR, "HR Specialist", 20},
	{"manager@waqtek.com", "manager123", ledger.RoleManager, "Miguel Torres", ledger.DeptIT, "Engineering Manager", 22},
	{"dev@waqtek.com", "dev123", ledger.RoleEmployee, "Dana Velasquez", ledger.DeptIT, "Software Engineer", 20},
	{"sales@waqtek.com", "sales123", ledger.RoleEmployee, "Samir Osei", ledger.DeptSales, "Account Executive", 18},
}

func main() {
	log := logrus.New()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer store.Close()

	now := time.Now().UTC()

	adminHash, err := auth.HashPassword("admin123")
	if err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}
	admin := ledger.User{
		ID:           uuid.NewString(),
		Email:        "admin@waqtek.com",
		PasswordHash: adminHash,
		Role:         ledger.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		log.WithError(err).Fatal("failed to create admin (already seeded?)")
	}
	log.WithField("email", admin.Email).Info("created admin account")

	for _, s := range seedEmployees {
		hash, err := auth.HashPassword(s.password)
		if err != nil {
			log.WithError(err).Fatal("failed to hash password")
		}

		user := ledger.User{
			ID:           uuid.NewString(),
			Email:        s.email,
			PasswordHash: hash,
			Role:         s.role,
			IsActive:     true,
			CreatedAt:    now,
		}
		initial := decimal.NewFromFloat(s.balance)
		emp := ledger.Employee{
			ID:                  uuid.NewString(),
			UserID:              user.ID,
			FullName:            s.fullName,
			Email:               s.email,
			Department:          s.department,
			Position:            s.position,
			HireDate:            now,
			PhoneNumber:         "+1-555-0100",
			InitialLeaveBalance: initial,
			IsActive:            true,
			CreatedAt:           now,
			CreatedBy:           admin.ID,
		}
		balance := ledger.LeaveBalance{
			ID:             uuid.NewString(),
			EmployeeID:     emp.ID,
			Year:           now.Year(),
			Month:          int(now.Month()),
			OpeningBalance: initial,
			LeaveTaken:     decimal.Zero,
			HRAdjustments:  decimal.Zero,
			ClosingBalance: initial,
			CreatedAt:      now,
		}
		sick := ledger.SickDays{
			ID:           uuid.NewString(),
			EmployeeID:   emp.ID,
			Year:         now.Year(),
			UsedDays:     0,
			TotalAllowed: ledger.SickDayAllowance,
			LastReset:    now,
		}

		if err := store.CreateEmployeeProfile(ctx, user, emp, balance, sick); err != nil {
			log.WithError(err).WithField("email", s.email).Fatal("failed to seed employee")
		}
		log.WithFields(logrus.Fields{
			"email": s.email,
			"role":  string(s.role),
		}).Info("created employee")
	}

	log.Info("seed complete")
}
