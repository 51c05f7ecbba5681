package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/pkg/logger"
)

// Usage: go run ./cmd/seed [workbook.xlsx]
//
// Migrates the schema and creates the default admin. When a workbook is given
// its "Users" and "Stores" sheets are imported as well.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(db.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := db.SeedAdmin(db.GetDB(), &cfg.Seed); err != nil {
		log.Fatal("Failed to seed admin:", err)
	}
	fmt.Printf("Admin account ready: %s\n", cfg.Seed.AdminEmail)

	if len(os.Args) < 2 {
		return
	}
	filePath := os.Args[1]

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	wb, err := readWorkbook(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Users to import: %d, stores to import: %d, invalid rows: %d\n",
		len(wb.Users), len(wb.Stores), len(wb.Invalid))
	for _, msg := range wb.Invalid {
		fmt.Printf("  skipped %s\n", msg)
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	ratingRepo := repository.NewRatingRepository(db.GetDB())
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)

	result := importWorkbook(wb, adminService, userRepo)

	fmt.Println("Import completed!")
	fmt.Printf("  Users created: %d\n", result.UsersCreated)
	fmt.Printf("  Stores created: %d\n", result.StoresCreated)
	fmt.Printf("  Skipped: %d\n", len(result.Skipped))
	for _, msg := range result.Skipped {
		fmt.Printf("    %s\n", msg)
	}
}
