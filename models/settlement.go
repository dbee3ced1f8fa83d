package models

// PayoutLine is one winner's share of a settled pot.
type PayoutLine struct {
	Name       string
	Stake      int64
	Payout     int64
	NewBalance int64
}

// SettlementResult describes the outcome of settling a recap game.
// Draw means the two rosters tied and no ledger mutation happened.
type SettlementResult struct {
	Game        *Game
	Draw        bool
	Winner      Team
	TotalPot    int64
	FeeAmount   int64
	PotAfterFee int64
	Payouts     []PayoutLine
}

// WithdrawalReceipt summarizes a completed withdrawal hold: the debited
// amount, the balance left after it, and the pending audit record.
type WithdrawalReceipt struct {
	Account          *Account
	Amount           int64
	RemainingBalance int64
	TransactionID    int64
}

// DepositResult is the outcome of a successful OCR deposit.
type DepositResult struct {
	Account    *Account
	Amount     int64
	NewBalance int64
}
