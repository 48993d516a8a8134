package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	userDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/user"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with default roles and a bootstrap admin",
	Long:  `Create the default roles and the bootstrap super-admin account used for first login.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			fmt.Println("Clearing existing users and roles")
			db.Exec("DELETE FROM users")
			db.Exec("DELETE FROM roles")
		}

		roles := defaultRoles()
		for i := range roles {
			var existing userDatamodel.Role
			err := db.Where("name = ?", roles[i].Name).First(&existing).Error
			if err == nil {
				continue
			}
			if err := db.Create(&roles[i]).Error; err != nil {
				log.Fatalf("failed to seed role %s: %v", roles[i].Name, err)
			}
			fmt.Println("Seeded role:", roles[i].Name)
		}

		var adminRole userDatamodel.Role
		if err := db.Where("name = ?", "Admin").First(&adminRole).Error; err != nil {
			log.Fatalf("admin role missing after seed: %v", err)
		}

		var existing userDatamodel.User
		if err := db.Where("username = ?", "admin").First(&existing).Error; err == nil {
			fmt.Println("admin user already exists, skipping")
			return
		}

		// First-login password; the admin is expected to change it
		// immediately, and the policy applies to the replacement.
		hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash bootstrap password: %v", err)
		}

		admin := userDatamodel.User{
			Username:     "admin",
			Email:        "admin@hospital.local",
			FullName:     "System Administrator",
			PasswordHash: string(hash),
			RoleID:       adminRole.ID,
			IsActive:     true,
			IsSuperAdmin: true,
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		fmt.Println("Seeded bootstrap admin user: admin")
	},
}

func defaultRoles() []userDatamodel.Role {
	return []userDatamodel.Role{
		{
			Name:               "Admin",
			Description:        "Full administrative access",
			CanViewPatients:    true,
			CanAddPatients:     true,
			CanEditPatients:    true,
			CanViewPharmacy:    true,
			CanManageInventory: true,
			CanSellMedicine:    true,
			CanViewReports:     true,
			CanManageUsers:     true,
			CanViewLogs:        true,
			CanProcessPayments: true,
			CanPrescribe:       true,
			CanSetPrices:       true,
			CanArchiveData:     true,
		},
		{
			Name:            "Receptionist",
			Description:     "Front desk: registration and payments",
			CanViewPatients: true,
			CanAddPatients:  true,
			CanEditPatients: true,
			CanProcessPayments: true,
		},
		{
			Name:            "Doctor",
			Description:     "Consultations and prescriptions",
			CanViewPatients: true,
			CanEditPatients: true,
			CanPrescribe:    true,
			CanViewReports:  true,
		},
		{
			Name:               "Pharmacist",
			Description:        "Pharmacy inventory and sales",
			CanViewPharmacy:    true,
			CanManageInventory: true,
			CanSellMedicine:    true,
			CanSetPrices:       true,
		},
	}
}
