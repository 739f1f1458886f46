package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	mongoMigration "github.com/Developer-Square/Park254-Backend/internal/migrations/mongo"
	"github.com/Developer-Square/Park254-Backend/pkg/app"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	"github.com/Developer-Square/Park254-Backend/pkg/config"

	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const JobName = "parkctl"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   JobName,
		Usage:  "operate the Park254 booking backend",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create collections, schema validators and indexes",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 2 * time.Minute,
						Usage: "overall migration deadline",
					},
				},
				Action: migrate,
			},
			{
				Name:  "token",
				Usage: "mint a signed access token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Usage:    "user id (24 character hex ObjectID)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "role",
						Value: auth.RoleUser,
						Usage: "one of user, vendor, admin",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "token lifetime, defaults to JWT_TTL",
					},
				},
				Action: token,
			},
		},
	}
}

func migrate(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		return cli.Exit(fmt.Sprintf("migration failed: %v", err), 1)
	}
	fmt.Fprintln(c.App.Writer, "Migration completed successfully.")
	return nil
}

func token(c *cli.Context) error {
	cfg := config.Load(JobName)
	tc := app.TokenConfig(cfg)
	if ttl := c.Duration("ttl"); ttl > 0 {
		tc.TTL = ttl
	}

	signed, err := mintToken(tc, c.String("user"), c.String("role"), time.Now())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(c.App.Writer, signed)
	return nil
}

func mintToken(tc auth.TokenConfig, userID, role string, now time.Time) (string, error) {
	if !primitive.IsValidObjectID(userID) {
		return "", fmt.Errorf("user id %q is not a valid ObjectID", userID)
	}
	return auth.MintAccessToken(tc, now, auth.Principal{UserID: userID, Role: role})
}
