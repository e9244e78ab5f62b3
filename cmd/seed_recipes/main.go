package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/database"
	"github.com/pageza/kodawari/backend/internal/logger"
	"github.com/pageza/kodawari/backend/internal/service"
)

const batchSize = 4 // Number of recipes generated concurrently

// Sample preferences per theme, enough to give the model something to work with
var seedPreferences = map[string]service.Preferences{
	"standard": {"mood": "relaxed", "time": "30 minutes", "people": "2", "preferredIngredients": []string{"chicken", "cabbage"}},
	"japanese": {"season": "autumn", "dashi": "kombu", "preferredIngredients": "salmon"},
	"kids":     {"taste": "mild", "cookingTime": "20 minutes", "preferredIngredients": []string{"egg", "rice"}},
	"sweet":    {"sweetType": "baked", "sweetIngredient": "apple"},
	"lunchbox": {"bentoBoxType": "single tier", "preferredIngredients": []string{"pork", "spinach"}},
	"spicy":    {"spiceLevel": "hot", "mainIngredient": "tofu"},
}

func main() {
	userID := flag.String("user", "", "Owner id for the seeded recipes")
	email := flag.String("email", "seed@example.com", "Email stored on the seeded profile")
	flag.Parse()
	if *userID == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Development: true})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	recipes := service.NewRecipeService(db)
	labels := service.NewLabelService(db, cfg.LabelUniqueNames)
	profiles := service.NewProfileService(db, nil, recipes, zlog)
	completion := service.NewOpenAIClient(cfg, zlog)

	if _, err := profiles.ProvisionProfile(ctx, *userID, *email); err != nil {
		zlog.Fatal("failed to create seed profile", zap.Error(err))
	}

	// A plain group keeps the other themes running when one fails.
	var g errgroup.Group
	g.SetLimit(batchSize)
	for slug, prefs := range seedPreferences {
		slug, prefs := slug, prefs
		g.Go(func() error {
			return seedTheme(ctx, zlog, completion, recipes, labels, *userID, slug, prefs)
		})
	}
	if err := g.Wait(); err != nil {
		zlog.Fatal("seeding incomplete", zap.Error(err))
	}

	zlog.Info("seeding finished", zap.Int("themes", len(seedPreferences)))
}

// seedTheme generates one recipe for the theme and files it under a label
// named after the theme
func seedTheme(ctx context.Context, zlog *zap.Logger, completion service.CompletionClient,
	recipes *service.RecipeService, labels *service.LabelService, ownerID, slug string, prefs service.Preferences) error {
	log := zlog.With(zap.String("theme", slug))

	prompt, err := service.BuildPrompt(slug, prefs)
	if err != nil {
		return fmt.Errorf("theme %s: failed to build prompt: %w", slug, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	text, err := completion.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("theme %s: failed to generate recipe: %w", slug, err)
	}

	recipe, err := recipes.CreateRecipe(ctx, ownerID, service.ExtractTitle(text), text, map[string]any(prefs))
	if err != nil {
		return fmt.Errorf("theme %s: failed to save recipe: %w", slug, err)
	}

	theme, _ := service.LookupTheme(slug)
	label, err := labels.CreateLabel(ctx, ownerID, theme.Name)
	if err != nil {
		return fmt.Errorf("theme %s: failed to create label: %w", slug, err)
	}
	if err := labels.AttachLabel(ctx, recipe.ID, label.ID, ownerID); err != nil {
		return fmt.Errorf("theme %s: failed to attach label: %w", slug, err)
	}

	log.Info("seeded recipe", zap.String("title", recipe.Title))
	return nil
}
