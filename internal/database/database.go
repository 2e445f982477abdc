package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"compliancehub/internal/audit"
	"compliancehub/internal/auth"
	"compliancehub/internal/compliance"
)

// Connect opens the postgres connection and configures the pool.
func Connect(dsn string, poolSize int, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(poolSize)
	sqlDB.SetMaxIdleConns(poolSize / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("Database connected", zap.Int("pool_size", poolSize))
	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&compliance.Profile{},
		&compliance.Policy{},
		&compliance.ComplianceTask{},
		&compliance.Report{},
		&audit.Entry{},
	)
}

// Seed creates the default admin account and a handful of sample rows so a
// fresh install has something on every screen. Existing rows are left alone.
func Seed(db *gorm.DB, adminEmail, adminPassword string, logger *zap.Logger) error {
	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := compliance.Profile{
		ID:           "11111111-1111-1111-1111-111111111111",
		FullName:     "System Administrator",
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         compliance.RoleAdmin,
	}
	if err := db.FirstOrCreate(&admin, compliance.Profile{Email: adminEmail}).Error; err != nil {
		return fmt.Errorf("failed to seed admin profile: %w", err)
	}

	for _, policy := range seedPolicies() {
		p := policy
		if err := db.FirstOrCreate(&p, compliance.Policy{Title: p.Title}).Error; err != nil {
			return fmt.Errorf("failed to seed policy %q: %w", p.Title, err)
		}
	}

	for _, report := range seedReports() {
		r := report
		if err := db.FirstOrCreate(&r, compliance.Report{TrackingID: r.TrackingID}).Error; err != nil {
			return fmt.Errorf("failed to seed report %q: %w", r.TrackingID, err)
		}
	}

	logger.Info("Seed data ensured")
	return nil
}

func seedPolicies() []compliance.Policy {
	now := time.Now()
	return []compliance.Policy{
		{
			ID:              "a1d4f6c0-0001-4c58-9a1e-5e1f6d2b0001",
			Title:           "Data Privacy Policy",
			Category:        "Information Security",
			Description:     "Guidelines for handling customer data in compliance with GDPR and other privacy regulations.",
			Status:          compliance.PolicyStatusActive,
			EffectiveDate:   now.AddDate(0, -3, 0),
			Acknowledgement: compliance.AckPending,
		},
		{
			ID:              "a1d4f6c0-0002-4c58-9a1e-5e1f6d2b0002",
			Title:           "Anti-Harassment Policy",
			Category:        "HR",
			Description:     "Guidelines to prevent and address workplace harassment and discrimination.",
			Status:          compliance.PolicyStatusActive,
			EffectiveDate:   now.AddDate(0, -5, 0),
			Acknowledgement: compliance.AckPending,
		},
		{
			ID:              "a1d4f6c0-0003-4c58-9a1e-5e1f6d2b0003",
			Title:           "Information Security Policy",
			Category:        "Information Security",
			Description:     "Guidelines for securing company information assets and preventing data breaches.",
			Status:          compliance.PolicyStatusPending,
			EffectiveDate:   now.AddDate(0, 1, 0),
			Acknowledgement: compliance.AckPending,
		},
		{
			ID:              "a1d4f6c0-0004-4c58-9a1e-5e1f6d2b0004",
			Title:           "Code of Conduct",
			Category:        "Ethics",
			Description:     "Standards of ethical business conduct expected from all employees.",
			Status:          compliance.PolicyStatusActive,
			EffectiveDate:   now.AddDate(-1, 0, 0),
			Acknowledgement: compliance.AckNotRequired,
		},
	}
}

func seedReports() []compliance.Report {
	now := time.Now()
	return []compliance.Report{
		{
			ID:            "b2e5a7d1-0001-4f69-8b2f-6f2a7e3c0001",
			Title:         "Potential Policy Violation",
			Category:      "Ethics",
			Status:        compliance.ReportStatusPending,
			StatusMessage: "Your report has been received and is pending review by our compliance team.",
			Priority:      compliance.PriorityMedium,
			TrackingID:    "WB-2023-001",
			DateSubmitted: now.AddDate(0, -2, 0),
		},
		{
			ID:            "b2e5a7d1-0002-4f69-8b2f-6f2a7e3c0002",
			Title:         "Workplace Safety Concern",
			Category:      "Health & Safety",
			Status:        compliance.ReportStatusInvestigating,
			StatusMessage: "Your report is currently under investigation. An investigator has been assigned to review the details provided.",
			Priority:      compliance.PriorityHigh,
			AssignedTo:    "Sarah Johnson",
			TrackingID:    "WB-2023-002",
			DateSubmitted: now.AddDate(0, -3, 0),
		},
		{
			ID:            "b2e5a7d1-0003-4f69-8b2f-6f2a7e3c0003",
			Title:         "Ethical Misconduct Report",
			Category:      "Ethics",
			Status:        compliance.ReportStatusResolved,
			StatusMessage: "Your report has been fully investigated and appropriate actions have been taken. The case is now closed.",
			Priority:      compliance.PriorityLow,
			AssignedTo:    "Michael Chen",
			TrackingID:    "WB-2023-003",
			DateSubmitted: now.AddDate(0, -4, 0),
		},
	}
}
