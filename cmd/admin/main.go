// Command admin grants and revokes the admin flag. Admins may edit and
// delete any recipe.
//
//	admin promote <id|username>
//	admin demote <id|username>
//	admin list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/database"
	"github.com/YURESSA/foodgram-st/internal/repository"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: admin <promote|demote> <id|username> | admin list")
	}
	flag.Parse()

	if err := run(context.Background(), flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Open(database.Dialector(cfg))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	users := repository.NewUserRepository(db)

	switch args[0] {
	case "list":
		admins, err := users.ListAdmins(ctx)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			log.Println("no admins")
		}
		for _, u := range admins {
			log.Printf("%d\t%s\t%s", u.ID, u.Username, u.Email)
		}
		return nil
	case "promote", "demote":
		if len(args) < 2 {
			flag.Usage()
			return errors.New("missing user")
		}
		id, err := resolveUser(ctx, users, args[1])
		if err != nil {
			return err
		}
		admin := args[0] == "promote"
		if err := users.SetAdmin(ctx, id, admin); err != nil {
			return err
		}
		log.Printf("user %d admin=%t", id, admin)
		return nil
	}
	flag.Usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func resolveUser(ctx context.Context, users repository.UserRepository, ref string) (uint, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return uint(id), nil
	}
	user, err := users.GetByUsername(ctx, ref)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, fmt.Errorf("user %q not found", ref)
	}
	return user.ID, nil
}
