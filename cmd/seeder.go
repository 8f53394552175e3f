package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample accounts and profiles for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"sessions", "profiles", "accounts"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		accounts := []struct {
			ID        string
			LoginName string
			Role      string
			Name      string
			Email     string
		}{
			{"emp_001", "siti", "employee", "Siti Rahayu", "siti@mail.com"},
			{"emp_002", "budi", "employee", "Budi Santoso", "budi@mail.com"},
			{"emp_100", "padil", "admin", "Padil Admin", "padil@mail.com"},
		}

		for _, a := range accounts {
			var exists int
			row := db.Raw("SELECT 1 FROM accounts WHERE id = ?", a.ID).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("account already exists:", a.ID)
				continue
			}

			if err := db.Exec(
				"INSERT INTO accounts (id, login_name, password_hash, role, is_active, name, email, department, position, employment_status, created_at, updated_at) VALUES (?, ?, ?, ?, true, ?, ?, 'People Operations', 'Staff', 'permanent', now(), now())",
				a.ID, a.LoginName, string(hash), a.Role, a.Name, a.Email,
			).Error; err != nil {
				log.Fatalf("failed to insert account %s: %v", a.ID, err)
			}
			fmt.Println("Seeded account:", a.ID)
		}

		// Profile keys intentionally drift in format from the account keys:
		// the resolver has to reconcile EMP001 with emp_001 and EMP-002 with
		// emp_002. emp_100 has no profile at all, exercising the shadow-copy
		// fallback.
		profiles := []struct {
			ProfileID  string
			Name       string
			Department string
			Position   string
		}{
			{"EMP001", "Siti Rahayu", "Finance", "Payroll Analyst"},
			{"EMP-002", "Budi Santoso", "Engineering", "Site Supervisor"},
		}

		for _, p := range profiles {
			var exists int
			row := db.Raw("SELECT 1 FROM profiles WHERE profile_id = ?", p.ProfileID).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("profile already exists:", p.ProfileID)
				continue
			}

			if err := db.Exec(
				"INSERT INTO profiles (profile_id, name, department, position, employment_status, created_at, updated_at) VALUES (?, ?, ?, ?, 'permanent', now(), now())",
				p.ProfileID, p.Name, p.Department, p.Position,
			).Error; err != nil {
				log.Fatalf("failed to insert profile %s: %v", p.ProfileID, err)
			}
			fmt.Println("Seeded profile:", p.ProfileID)
		}

		fmt.Println("Seeding complete; all seeded accounts use password:", password)
	},
}
