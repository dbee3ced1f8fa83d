package bot

import (
	"fmt"
	"strings"

	"rekapbot/models"
	"rekapbot/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = `Welcome!

Send a recap message with K: and B: team markers to start a round.
Send a photo of a transfer receipt to deposit.

Commands:
/profile - your balance and referral stats
/withdraw <amount> - request a withdrawal
`

func formatProfile(account *models.Account, referrals int, botUsername string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", account.Username)
	fmt.Fprintf(&sb, "Balance: %s\n", service.FormatAmount(account.Balance))
	if account.Team != nil {
		fmt.Fprintf(&sb, "Team: %s\n", *account.Team)
	}
	fmt.Fprintf(&sb, "Referrals: %d\n", referrals)
	if account.TelegramID != nil && botUsername != "" {
		fmt.Fprintf(&sb, "\nYour referral link:\nhttps://t.me/%s?start=%d", botUsername, *account.TelegramID)
	}
	return sb.String()
}

func formatSettlement(result *models.SettlementResult) string {
	if result.Draw {
		return "The round is a draw. Both teams staked the same total, no balance was changed."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Team %s wins!\n\n", result.Winner)
	fmt.Fprintf(&sb, "Losing pot: %s\n", service.FormatAmount(result.TotalPot))
	if result.FeeAmount > 0 {
		fmt.Fprintf(&sb, "Fee (%g%%): %s\n", result.Game.FeePercentage, service.FormatAmount(result.FeeAmount))
	}
	fmt.Fprintf(&sb, "Paid out: %s\n\nPayouts:\n", service.FormatAmount(result.PotAfterFee))
	for _, line := range result.Payouts {
		fmt.Fprintf(&sb, "%s: +%s (balance %s)\n",
			line.Name, service.FormatAmount(line.Payout), service.FormatAmount(line.NewBalance))
	}
	return sb.String()
}

func formatWithdrawalRequest(receipt *models.WithdrawalReceipt, from *tgbotapi.User) string {
	name := receipt.Account.Username
	if from != nil && from.FirstName != "" {
		name = fmt.Sprintf("%s (%s)", name, from.FirstName)
	}
	return fmt.Sprintf(
		"Withdrawal request #%d\nFrom: %s\nAmount: %s\nRemaining balance: %s\n\nPayment details follow. Confirm with /wdpaid %d or /wdreject %d.",
		receipt.TransactionID, name,
		service.FormatAmount(receipt.Amount), service.FormatAmount(receipt.RemainingBalance),
		receipt.TransactionID, receipt.TransactionID)
}
