package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/bootstrap"
	"github.com/popeat/popeat/internal/config"
	"github.com/popeat/popeat/internal/migrations"
	"github.com/popeat/popeat/internal/repository"
	"github.com/popeat/popeat/internal/repository/sqlite"
	"github.com/popeat/popeat/internal/support/hash"
)

// seedFixture is the YAML shape consumed by `popeat seed`.
type seedFixture struct {
	Users []struct {
		Email    string   `yaml:"email"`
		Name     string   `yaml:"name"`
		Password string   `yaml:"password"`
		Roles    []string `yaml:"roles"`
	} `yaml:"users"`
	Restaurants []struct {
		OwnerEmail       string `yaml:"owner_email"`
		Name             string `yaml:"name"`
		Description      string `yaml:"description"`
		Address          string `yaml:"address"`
		DeliveryFeeCents int64  `yaml:"delivery_fee_cents"`
		Articles         []struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
			PriceCents  int64  `yaml:"price_cents"`
			Available   *bool  `yaml:"available"`
		} `yaml:"articles"`
	} `yaml:"restaurants"`
}

func init() {
	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture accounts, restaurants and menus from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := bootstrap.OpenSQLite(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Up(db); err != nil {
				return err
			}

			raw, err := os.ReadFile(seedFile)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			var fixture seedFixture
			if err := yaml.Unmarshal(raw, &fixture); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			store := sqlite.NewStore(db)
			hasher, err := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			return applySeed(cmd.Context(), store, hasher, fixture)
		},
	}
	seedCmd.Flags().StringVar(&seedFile, "file", "seed.yaml", "Path to the YAML fixture")
	rootCmd.AddCommand(seedCmd)
}

func applySeed(ctx context.Context, store repository.Store, hasher hash.Hasher, fixture seedFixture) error {
	now := time.Now().UTC().Unix()

	for _, u := range fixture.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || u.Password == "" {
			return fmt.Errorf("seed user needs email and password")
		}
		if _, err := store.Users().FindByEmail(ctx, email); err == nil {
			fmt.Printf("user %s already exists, skipping\n", email)
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		roles, err := role.ParseSet(u.Roles)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", email, err)
		}
		if len(roles) == 0 {
			roles = role.NewSet(role.Client)
		}
		hashed, err := hasher.Hash(u.Password)
		if err != nil {
			return err
		}
		created, err := store.Users().Create(ctx, &repository.User{
			Email:        email,
			Name:         u.Name,
			PasswordHash: hashed,
			Roles:        roles,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", email, err)
		}
		fmt.Printf("created user %s (id %d)\n", email, created.ID)
	}

	for _, r := range fixture.Restaurants {
		ownerEmail := strings.ToLower(strings.TrimSpace(r.OwnerEmail))
		owner, err := store.Users().FindByEmail(ctx, ownerEmail)
		if err != nil {
			return fmt.Errorf("seed restaurant %q: owner %s: %w", r.Name, ownerEmail, err)
		}
		if !owner.Roles.Has(role.Restaurateur) {
			return fmt.Errorf("seed restaurant %q: owner %s lacks the RESTAURATEUR role", r.Name, ownerEmail)
		}

		restaurant, err := store.Restaurants().FindByOwner(ctx, owner.ID)
		switch {
		case err == nil:
			fmt.Printf("restaurant for %s already exists, skipping\n", ownerEmail)
		case errors.Is(err, repository.ErrNotFound):
			restaurant, err = store.Restaurants().Create(ctx, &repository.Restaurant{
				OwnerID:          owner.ID,
				Name:             r.Name,
				Description:      r.Description,
				Address:          r.Address,
				DeliveryFeeCents: r.DeliveryFeeCents,
				CreatedAt:        now,
				UpdatedAt:        now,
			})
			if err != nil {
				return fmt.Errorf("seed restaurant %q: %w", r.Name, err)
			}
			fmt.Printf("created restaurant %s (id %d)\n", restaurant.Name, restaurant.ID)
		default:
			return err
		}

		existing, err := store.Articles().ListByRestaurant(ctx, restaurant.ID)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, a := range existing {
			have[a.Name] = true
		}

		for _, a := range r.Articles {
			if have[a.Name] {
				continue
			}
			available := true
			if a.Available != nil {
				available = *a.Available
			}
			article, err := store.Articles().Create(ctx, &repository.Article{
				RestaurantID: restaurant.ID,
				Name:         a.Name,
				Description:  a.Description,
				PriceCents:   a.PriceCents,
				Available:    available,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if err != nil {
				return fmt.Errorf("seed article %q: %w", a.Name, err)
			}
			fmt.Printf("created article %s (id %d)\n", article.Name, article.ID)
		}
	}
	return nil
}
