package main

import (
	"fmt"

	"mini-mart/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

func webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Point Telegram updates at the API or back to long polling",
	}

	var dropPending bool
	set := &cobra.Command{
		Use:   "set [base-url]",
		Short: "Register <base-url>/telegram/webhook with the configured secret token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
			if err != nil {
				return fmt.Errorf("failed to authorize bot: %w", err)
			}

			params := tgbotapi.Params{}
			params["url"] = args[0] + "/telegram/webhook"
			params.AddNonEmpty("secret_token", cfg.Telegram.WebhookSecret)
			params.AddBool("drop_pending_updates", dropPending)
			if err := params.AddInterface("allowed_updates", []string{"message", "pre_checkout_query"}); err != nil {
				return err
			}

			resp, err := api.MakeRequest("setWebhook", params)
			if err != nil {
				return fmt.Errorf("failed to set webhook: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Description)
			return nil
		},
	}
	set.Flags().BoolVar(&dropPending, "drop-pending", false, "discard updates queued while no receiver was set")

	remove := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook so cmd/bot can long-poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
			if err != nil {
				return fmt.Errorf("failed to authorize bot: %w", err)
			}
			if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
				return fmt.Errorf("failed to delete webhook: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Webhook removed")
			return nil
		},
	}
	remove.Flags().BoolVar(&dropPending, "drop-pending", false, "discard queued updates")

	cmd.AddCommand(set, remove)
	return cmd
}
