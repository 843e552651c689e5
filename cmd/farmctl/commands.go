package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"farm-management/internal/domain"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an access token for a user (development only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		user, err := e.user(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		token, err := e.services.Auth.IssueAccessToken(user)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var sendFlags struct {
	as        string
	farm      string
	recipient string
	category  string
	title     string
	message   string
	email     bool
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a notification to the members of a farm",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		sender, err := e.user(cmd.Context(), sendFlags.as)
		if err != nil {
			return err
		}
		if !sender.HasAnyRole(domain.RoleAdmin, domain.RoleSuperuser) {
			return fmt.Errorf("user %s may not send notifications", sender.ID)
		}

		input := domain.SendNotificationInput{
			FarmID:    sendFlags.farm,
			Category:  domain.Category(sendFlags.category),
			Title:     sendFlags.title,
			Message:   sendFlags.message,
			SendEmail: sendFlags.email,
		}
		if sendFlags.recipient != "" {
			id, err := uuid.Parse(sendFlags.recipient)
			if err != nil {
				return fmt.Errorf("invalid recipient id: %w", err)
			}
			input.RecipientID = &id
		}

		result, err := e.services.Notification.Send(cmd.Context(), sender, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "farm %s: %d created, %d failed\n", result.FarmID, result.Created, result.Failed)
		return nil
	},
}

var navFlags struct {
	path string
	farm string
}

var navCmd = &cobra.Command{
	Use:   "nav <user-id>",
	Short: "Print the menu a user would see at a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		user, err := e.user(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		menu, err := e.services.Navigation.Resolve(cmd.Context(), user, navFlags.path, navFlags.farm)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(menu)
	},
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendFlags.as, "as", "", "id of the sending admin")
	f.StringVar(&sendFlags.farm, "farm", "", "farm id")
	f.StringVar(&sendFlags.recipient, "recipient", "", "single recipient user id (default: every farm member)")
	f.StringVar(&sendFlags.category, "category", string(domain.CategoryGeneral), "notification category")
	f.StringVar(&sendFlags.title, "title", "", "notification title")
	f.StringVar(&sendFlags.message, "message", "", "notification message")
	f.BoolVar(&sendFlags.email, "email", false, "also email each recipient")
	_ = sendCmd.MarkFlagRequired("as")
	_ = sendCmd.MarkFlagRequired("farm")

	navCmd.Flags().StringVar(&navFlags.path, "path", "/", "current path")
	navCmd.Flags().StringVar(&navFlags.farm, "farm", "", "explicit farm id")
}
