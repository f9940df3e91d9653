package main

import (
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/kart-scoreboard/internal/database"
	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":           "./scoreboard.db",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	store := scoreboard.New(db)

	maxScore := int64(60)
	group, err := store.CreateGroup("Friday Night Karts", &maxScore)
	if err != nil {
		log.Fatalf("Failed to create group: %s", err)
	}

	names := []string{"Seeder Player A", "Seeder Player B", "Seeder Player C", "Seeder Player D"}
	var players []scoreboard.Player
	for _, name := range names {
		player, err := store.CreatePlayer(name, nil)
		if err != nil {
			log.Fatalf("Failed to create player %q: %s", name, err)
		}
		if err := store.AddPlayerToGroup(player.ID, group.ID); err != nil {
			log.Fatalf("Failed to add player to group: %s", err)
		}
		players = append(players, player)
	}

	// A handful of games with random but max-bounded scores.
	for i := 0; i < 10; i++ {
		scores := make([]scoreboard.GameScore, 0, len(players))
		for _, p := range players {
			scores = append(scores, scoreboard.GameScore{
				PlayerID: p.ID,
				Score:    rand.Int63n(maxScore + 1),
			})
		}
		if _, err := store.CreateGame(group.ID, scores); err != nil {
			log.Fatalf("Failed to create game: %s", err)
		}
	}

	log.Info("Seeding complete", "group", group.ID, "players", len(players), "games", 10)
}
