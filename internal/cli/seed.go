package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
	"github.com/homeservices/marketplace/internal/core/service"
	"github.com/homeservices/marketplace/internal/infrastructure/db/records"
	"github.com/homeservices/marketplace/pkg/logger"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Password string
}

var demoUsers = []domain.User{
	{Name: "Hannah Owens", Email: "homeowner@example.com", Role: domain.RoleHomeowner},
	{Name: "Eli Sparks", Email: "expert@example.com", Role: domain.RoleExpert},
}

var demoRequests = []ports.CreateRequestInput{
	{Title: "Leaking kitchen faucet", Category: "Plumbing", Description: "Drips constantly, even when fully closed."},
	{Title: "Repaint living room", Category: "Painting", Description: "About 20 m2 of wall, colour already chosen."},
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a demo homeowner, expert and requests",
		Long: `Load demo data into the configured record store.

Existing accounts are left alone; requests are added on every run.

Example:
  marketplace seed
  marketplace seed --password hunter2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Password, "password", "password", "password for the demo accounts")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *SeedOptions) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer b.Close()

	hasher := service.NewPasswordHasher(opts.cfg.PasswordHashing)
	users := records.NewUserRepository(b.records)
	for _, u := range demoUsers {
		if err := seedUser(ctx, users, hasher, u, opts.Password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user  %-24s %s\n", u.Email, u.Role)
	}

	requests := service.NewRequestService(records.NewRequestRepository(b.records), nil, nil, logger.Component("seed"))
	owner, expert := demoUsers[0], demoUsers[1]
	for i, in := range demoRequests {
		req, err := requests.CreateRequest(ctx, owner, in)
		if err != nil {
			return fmt.Errorf("seed request: %w", err)
		}
		if i == 0 {
			err := requests.SubmitOffer(ctx, ports.SubmitOfferInput{
				RequestID:   req.ID,
				ExpertName:  expert.Name,
				ExpertEmail: expert.Email,
				Price:       "120",
				Message:     "I can come by tomorrow morning.",
			})
			if err != nil {
				return fmt.Errorf("seed offer: %w", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "request %s %q\n", req.ID, req.Title)
	}
	return nil
}

func seedUser(ctx context.Context, users *records.UserRepository, hasher ports.PasswordHasher, u domain.User, password string) error {
	stored, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	u.Password = stored
	if err := users.Create(ctx, u); err != nil && !errors.Is(err, domain.ErrUserExists) {
		return fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	return nil
}
