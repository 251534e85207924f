package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dealerdash/internal/models"
	"dealerdash/internal/store"
)

// Creates the schema and seeds the first store + login. Safe to re-run:
// existing rows are left alone.
func main() {
	dbPath := flag.String("db", "/var/lib/dealerdash/dealerdash.db", "sqlite database path")
	storeName := flag.String("store", "", "dealership store name to create")
	username := flag.String("user", "", "login username to create")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	flag.Parse()

	st, err := store.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open DB: %v", err)
	}
	fmt.Println("Schema migrated.")

	if *storeName == "" || *username == "" || *password == "" {
		fmt.Println("No seed flags given (-store, -user, -password); schema only.")
		return
	}

	// Store
	var dealer models.Store
	err = st.DB.Where("name = ?", *storeName).First(&dealer).Error
	if err != nil {
		dealer = models.Store{
			Name:        *storeName,
			Status:      "ACTIVE",
			CreatedDate: time.Now(),
		}
		if err := st.CreateStore(&dealer); err != nil {
			log.Fatalf("failed to create store: %v", err)
		}
		fmt.Printf("Created store %q (id %d).\n", dealer.Name, dealer.ID)
	} else {
		fmt.Printf("Store %q already exists (id %d).\n", dealer.Name, dealer.ID)
	}

	// User
	if _, err := st.GetUserByUsername(*username); err == nil {
		fmt.Printf("User %q already exists.\n", *username)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: string(hash),
		StoreID:      dealer.ID,
		Active:       true,
	}
	if err := st.CreateUser(user); err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("Created user %q for store %q.\n", user.Username, dealer.Name)
}
