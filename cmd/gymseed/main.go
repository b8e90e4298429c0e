// gymseed creates the first admin account, and optionally a trainer, on an
// empty gymauth database. It reads the same DATABASE_* settings as the
// server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/app"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/service"
	"github.com/aussiebroadwan/gymauth/pkg/cryptox"
)

type account struct {
	input     service.RegisterInput
	generated bool
}

func main() {
	var (
		adminEmail      = flag.String("admin-email", "admin@gym.local", "admin account email")
		adminPassword   = flag.String("admin-password", "", "admin password (generated when empty)")
		adminName       = flag.String("admin-name", "Admin User", "admin display name")
		trainerEmail    = flag.String("trainer-email", "", "also create a trainer with this email")
		trainerPassword = flag.String("trainer-password", "", "trainer password (generated when empty)")
		trainerName     = flag.String("trainer-name", "Trainer", "trainer display name")
	)
	flag.Parse()

	accounts := []account{newAccount(*adminEmail, *adminPassword, *adminName, domain.RoleAdmin)}
	if *trainerEmail != "" {
		accounts = append(accounts, newAccount(*trainerEmail, *trainerPassword, *trainerName, domain.RoleTrainer))
	}

	if err := run(accounts); err != nil {
		if errors.Is(err, service.ErrAlreadySeeded) {
			color.Yellow("Nothing to do: %v\n", err)
			return
		}
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func newAccount(email, password, name string, role domain.Role) account {
	a := account{input: service.RegisterInput{Email: email, Password: password, Name: name, Role: string(role)}}
	if password == "" {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			color.Red("Error: %v\n", err)
			os.Exit(1)
		}
		a.input.Password = pw
		a.generated = true
	}
	return a
}

func run(accounts []account) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	users := &service.UserService{Store: st, Hasher: cryptox.NewHasher(cfg.BcryptCost)}

	inputs := make([]service.RegisterInput, len(accounts))
	for i, a := range accounts {
		inputs[i] = a.input
	}
	created, err := users.Seed(ctx, inputs...)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	fmt.Println()
	for i, u := range created {
		green.Printf("  Created %s\n", u.Role)
		fmt.Printf("  ID:       %s\n", u.ID)
		fmt.Printf("  Email:    %s\n", u.Email)
		if accounts[i].generated {
			cyan.Printf("  Password: %s\n", accounts[i].input.Password)
		}
		fmt.Println()
	}
	return nil
}
