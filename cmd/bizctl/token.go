package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/biztracker/pkg/jwt"
)

func newTokenCmd(a *app) *cobra.Command {
	var userID, role string
	var minutes int

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un Bearer token firmado con JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET no está definido")
			}
			if role != jwt.RoleOwner && role != jwt.RoleStaff {
				return fmt.Errorf("rol inválido %q (owner|staff)", role)
			}
			if minutes <= 0 {
				minutes = a.cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(a.cfg.JWT.Secret, userID, role, a.cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "operador", "sujeto del token")
	cmd.Flags().StringVar(&role, "role", jwt.RoleStaff, "rol: owner|staff")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	return cmd
}
