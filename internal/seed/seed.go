// Package seed bootstraps a default admin user on first boot and, when
// enabled, a demo roster for local development.
package seed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/d9705996/hrportal/internal/auth"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// AdminOptions configures the seed admin user.
type AdminOptions struct {
	Email    string
	Password string // if empty, a random password is generated
}

// EnsureAdmin creates a seed SUPERADMIN user if no users exist.
// A generated password is printed to stdout exactly once; a supplied
// password is used directly. Safe to call on every startup.
func EnsureAdmin(_ context.Context, db *gorm.DB, opts AdminOptions, log *slog.Logger) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		log.Info("seed admin already exists")
		return nil
	}

	password := opts.Password
	if password == "" {
		var err error
		password, err = generatePassword()
		if err != nil {
			return fmt.Errorf("generate seed password: %w", err)
		}
		fmt.Printf("[hrportal] seed admin password: %s\n", password)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	u := &model.User{
		EmployeeID:   "EMP-SUP-000",
		Email:        opts.Email,
		FullName:     "Seed Admin",
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		return fmt.Errorf("insert seed admin: %w", err)
	}

	log.Info("seed admin created", "email", opts.Email)
	return nil
}

// demoUser describes one entry of the demo roster.
type demoUser struct {
	employeeID string
	email      string
	fullName   string
	role       string
	department string
	birthday   string // YYYY-MM-DD
}

var demoRoster = []demoUser{
	{"EMP-SUP-001", "sa@demo.local", "Super Administrator", model.RoleSuperAdmin, "Executive", "1980-01-15"},
	{"EMP-ADM-001", "admin@demo.local", "Demo Admin", model.RoleAdmin, "IT", "1985-03-03"},
	{"EMP-EMP-001", "user@demo.local", "Demo Employee", model.RoleEmployee, "Sales", "1990-05-20"},
	{"EMP-HR-001", "hr@company.com", "HR Manager", model.RoleHR, "Human Resources", "1987-04-05"},
	{"EMP-ENG-001", "john.doe@company.com", "John Doe", model.RoleEmployee, "Engineering", "1992-08-12"},
	{"EMP-MKT-001", "jane.smith@company.com", "Jane Smith", model.RoleEmployee, "Marketing", "1991-09-23"},
	{"EMP-SLS-001", "bob.johnson@company.com", "Bob Johnson", model.RoleEmployee, "Sales", "1993-11-30"},
	{"EMP-ENG-002", "alice.williams@company.com", "Alice Williams", model.RoleEmployee, "Engineering", "1994-12-08"},
	{"EMP-VND-001", "vendor@partner.example", "Facilities Vendor", model.RoleVendor, "External", ""},
}

// EnsureDemoData inserts a demo roster plus a couple of public channels.
// Idempotent: each user is looked up by email before insertion, so repeat
// startups add nothing.
func EnsureDemoData(_ context.Context, db *gorm.DB, log *slog.Logger) error {
	hash, err := auth.HashPassword("password123")
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	byEmail := map[string]uint{}
	created := 0
	for _, d := range demoRoster {
		var existing model.User
		err := db.Where("email = ?", d.email).First(&existing).Error
		if err == nil {
			byEmail[d.email] = existing.ID
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("look up demo user: %w", err)
		}

		dept := d.department
		u := model.User{
			EmployeeID:   d.employeeID,
			Email:        d.email,
			FullName:     d.fullName,
			PasswordHash: hash,
			Role:         d.role,
			Department:   &dept,
			IsActive:     true,
		}
		if d.birthday != "" {
			dob, err := time.Parse("2006-01-02", d.birthday)
			if err != nil {
				return fmt.Errorf("parse demo birthday: %w", err)
			}
			u.DateOfBirth = &dob
		}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("insert demo user %s: %w", d.email, err)
		}
		byEmail[d.email] = u.ID
		created++
	}

	if err := ensureDemoChannels(db, byEmail); err != nil {
		return err
	}

	log.Info("demo data ensured", "users_created", created)
	return nil
}

func ensureDemoChannels(db *gorm.DB, byEmail map[string]uint) error {
	channels := []struct {
		name        string
		description string
		channelType string
		joinCode    string
		creator     string
	}{
		{"General Announcements", "Company-wide announcements and updates", "announcement", "GENERAL1", "admin@demo.local"},
		{"HR Updates", "Human Resources policies and updates", "hr", "HRNEWS01", "hr@company.com"},
	}

	for _, c := range channels {
		var count int64
		if err := db.Model(&model.Channel{}).Where("name = ?", c.name).Count(&count).Error; err != nil {
			return fmt.Errorf("look up demo channel: %w", err)
		}
		if count > 0 {
			continue
		}
		creatorID, ok := byEmail[c.creator]
		if !ok {
			continue
		}
		desc := c.description
		ch := model.Channel{
			Name:        c.name,
			Description: &desc,
			ChannelType: c.channelType,
			JoinCode:    c.joinCode,
			CreatedBy:   creatorID,
		}
		if err := db.Create(&ch).Error; err != nil {
			return fmt.Errorf("insert demo channel %s: %w", c.name, err)
		}
		member := model.ChannelMember{UserID: creatorID, ChannelID: ch.ID, Role: model.MemberRoleModerator}
		if err := db.Create(&member).Error; err != nil {
			return fmt.Errorf("insert demo moderator: %w", err)
		}
	}
	return nil
}

func generatePassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
