package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

func newUserAddCommand(a *app) *cobra.Command {
	var (
		role  string
		pin   string
		color string
		emoji string
	)

	cmd := &cobra.Command{
		Use:   "useradd NAME",
		Short: "Create a household member, typically the first admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := model.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if r.Privileged() && pin == "" {
				return fmt.Errorf("%s users need a --pin to sign in", r)
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			users := store.NewUserStore(db)
			u, err := users.Create(args[0], r, color, emoji)
			if err != nil {
				return err
			}
			if pin != "" {
				hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
				if err != nil {
					return fmt.Errorf("hash pin: %w", err)
				}
				if err := users.SetPIN(u.ID, string(hash)); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q with id %d\n", u.Role, u.Name, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(model.RoleAdmin), "admin, member or child")
	cmd.Flags().StringVar(&pin, "pin", "", "sign-in PIN (4-8 digits)")
	cmd.Flags().StringVar(&color, "color", "#4f46e5", "display color")
	cmd.Flags().StringVar(&emoji, "emoji", "", "avatar emoji")
	return cmd
}
