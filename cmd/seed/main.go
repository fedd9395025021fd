package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/websap/backend/internal/config"
	"github.com/websap/backend/internal/database"
	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	// Security rules
	n, err := services.NewSecurityService(db).SeedDefaultRules(context.Background())
	if err != nil {
		log.Printf("Failed to seed security rules: %v", err)
	} else if n > 0 {
		fmt.Printf("✓ Created %d default security rules\n", n)
	} else {
		fmt.Println("  Security rules already present")
	}

	// Sample restaurant and dishes, only on an empty catalogue
	var platos int64
	db.Model(&models.Plato{}).Count(&platos)
	if platos == 0 {
		restaurante := models.Restaurante{
			Nombre:    "WebSAP Centro",
			Direccion: "Calle Mayor 1",
			Telefono:  "+34 900 000 000",
			Horario:   "L-D 12:00-23:30",
			Activo:    true,
		}
		if err := db.Create(&restaurante).Error; err != nil {
			log.Printf("Failed to seed restaurante: %v", err)
		} else {
			fmt.Printf("✓ Created restaurante: %s\n", restaurante.Nombre)
		}

		samples := []models.Plato{
			{Nombre: "Paella valenciana", Descripcion: "Arroz con pollo, conejo y verduras", Precio: 14.5, Categoria: "principal", Disponible: true},
			{Nombre: "Gazpacho", Descripcion: "Sopa fría de tomate", Precio: 6, Categoria: "entrante", Disponible: true},
			{Nombre: "Tortilla de patatas", Descripcion: "Con cebolla", Precio: 8.75, Categoria: "entrante", Disponible: true},
			{Nombre: "Crema catalana", Precio: 5.5, Categoria: "postre", Disponible: true},
			{Nombre: "Pulpo a la gallega", Precio: 18, Categoria: "principal", Disponible: false},
		}
		for i := range samples {
			if restaurante.ID != 0 {
				samples[i].RestauranteID = &restaurante.ID
			}
			if err := db.Create(&samples[i]).Error; err != nil {
				log.Printf("Failed to seed plato %s: %v", samples[i].Nombre, err)
				continue
			}
			fmt.Printf("✓ Created plato: %s\n", samples[i].Nombre)
		}
	} else {
		fmt.Println("  Platos already present")
	}

	// Superadministrador, only when a password is provided
	adminEmail := os.Getenv("WEBSAP_SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@websap.local"
	}
	adminPassword := os.Getenv("WEBSAP_SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		fmt.Println("  WEBSAP_SEED_ADMIN_PASSWORD not set, skipping admin user")
	} else {
		nombre := "Administrador"
		_, err := services.NewUserService(db).Create(services.UserInput{
			Nombre:   &nombre,
			Email:    &adminEmail,
			Password: &adminPassword,
			Roles:    []string{models.RoleSuperadministrador},
		}, nil)
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			fmt.Printf("  User already exists: %s\n", adminEmail)
		case err != nil:
			log.Printf("Failed to seed admin user: %v", err)
		default:
			fmt.Printf("✓ Created superadmin user: %s\n", adminEmail)
		}
	}

	fmt.Println("\n✓ Database seeding completed successfully!")
}
