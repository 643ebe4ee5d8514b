package main

import (
	"context"
	"flag"
	"os"

	"github.com/punchamoorthee/ninjabank/internal/config"
	"github.com/punchamoorthee/ninjabank/internal/domain"
	"github.com/punchamoorthee/ninjabank/internal/logging"
	"github.com/punchamoorthee/ninjabank/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const OpeningBalance = 30

type demoNinja struct {
	Name string
	Code string
}

var roster = []demoNinja{
	{Name: "Akira", Code: "AKIRA-1001"},
	{Name: "Hana", Code: "HANA-1002"},
	{Name: "Kenji", Code: "KENJI-1003"},
	{Name: "Mei", Code: "MEI-1004"},
	{Name: "Ren", Code: "REN-1005"},
	{Name: "Sora", Code: "SORA-1006"},
}

func main() {
	username := flag.String("sensei-user", "sensei", "Username of the demo sensei")
	password := flag.String("sensei-password", "", "Password of the demo sensei (required)")
	flag.Parse()

	logger := logging.StdoutLogger
	if *password == "" {
		logger.Error("missing -sensei-password")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	client := store.NewClient(store.ClientConfig{
		APIURL:  cfg.AirtableAPIURL,
		BaseID:  cfg.AirtableBaseID,
		APIKey:  cfg.AirtableAPIKey,
		Timeout: cfg.StoreTimeout,
	})

	if err := seed(context.Background(), client, *username, *password, logger); err != nil {
		logger.Error("seeding failed", "error", err.Error())
		os.Exit(1)
	}
}

func seed(ctx context.Context, client *store.Client, username, password string, logger logging.Logger) error {
	logger.Info("seeding record store")

	existing, err := client.FindAll(ctx, store.TableNinjas, store.Query{MaxRecords: 1, Fields: []string{store.FieldName}})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("ninjas table is not empty, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := client.Insert(ctx, store.TableSensei, map[string]any{
		store.FieldUsername:  username,
		store.FieldPassword:  string(hash),
		store.FieldFirstName: "Demo",
		store.FieldName:      "Demo Sensei",
	}); err != nil {
		return err
	}

	// Coins is a rollup over the ninja's transactions, so balances come
	// from the opening deposits rather than a field written here.
	for _, n := range roster {
		rec, err := client.Insert(ctx, store.TableNinjas, map[string]any{
			store.FieldName:      n.Name,
			store.FieldLoginInfo: n.Code,
		})
		if err != nil {
			return err
		}

		if _, err := client.Insert(ctx, store.TableTransactions, map[string]any{
			store.FieldNinjas:          []string{rec.ID},
			store.FieldAmount:          OpeningBalance,
			store.FieldReason:          "Opening balance",
			store.FieldTransactionType: string(domain.Deposit),
			store.FieldStaff:           "Demo Sensei",
		}); err != nil {
			return err
		}
		logger.Info("ninja seeded", "name", n.Name, "code", n.Code)
	}

	logger.Info("seeding complete", "ninjas", len(roster), "sensei", username)
	return nil
}
