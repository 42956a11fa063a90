package model

// GameSettings control money rules for one game. Immutable once the game
// leaves the waiting state.
type GameSettings struct {
	StartingBalance      int64 `json:"startingBalance" yaml:"starting_balance"`
	PassGoAmount         int64 `json:"passGoAmount" yaml:"pass_go_amount"`
	BankerlessWithdrawal bool  `json:"bankerlessWithdrawal" yaml:"bankerless_withdrawal"`
	AnonymousBalances    bool  `json:"anonymousBalances" yaml:"anonymous_balances"`
}

// DefaultGameSettings returns the settings used when a client supplies none
func DefaultGameSettings() GameSettings {
	return GameSettings{
		StartingBalance:      1500,
		PassGoAmount:         200,
		BankerlessWithdrawal: true,
		AnonymousBalances:    true,
	}
}

// RawSettings is an untrusted, possibly partial settings object as sent by a
// client. Values are whatever the JSON decoder produced.
type RawSettings map[string]any

// Raw keys accepted from clients
const (
	settingStartingBalance      = "startingBalance"
	settingPassGoAmount         = "passGoAmount"
	settingBankerlessWithdrawal = "bankerlessWithdrawal"
	settingBankerlessLegacy     = "bankerLessWithdrawals"
	settingAnonymousBalances    = "anonymousBalances"
)

// Raw converts settings back into their client-facing raw form
func (s GameSettings) Raw() RawSettings {
	return RawSettings{
		settingStartingBalance:      s.StartingBalance,
		settingPassGoAmount:         s.PassGoAmount,
		settingBankerlessWithdrawal: s.BankerlessWithdrawal,
		settingAnonymousBalances:    s.AnonymousBalances,
	}
}

// Merge overlays patch on top of base; neither input is modified
func (r RawSettings) Merge(patch RawSettings) RawSettings {
	merged := make(RawSettings, len(r)+len(patch))
	for k, v := range r {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// NormalizeSettings builds valid settings from raw input. Each numeric field
// is validated independently and falls back to its default when invalid or
// absent; booleans are only taken when they really are booleans.
func NormalizeSettings(raw RawSettings, defaults GameSettings) GameSettings {
	s := defaults
	if raw == nil {
		return s
	}

	if v, ok := raw[settingStartingBalance]; ok && v != nil {
		if n, err := ParseAmount(v); err == nil {
			s.StartingBalance = n
		}
	}
	if v, ok := raw[settingPassGoAmount]; ok && v != nil {
		if n, err := ParseAmount(v); err == nil {
			s.PassGoAmount = n
		}
	}

	if b, ok := raw[settingBankerlessWithdrawal].(bool); ok {
		s.BankerlessWithdrawal = b
	} else if b, ok := raw[settingBankerlessLegacy].(bool); ok {
		s.BankerlessWithdrawal = b
	}
	if b, ok := raw[settingAnonymousBalances].(bool); ok {
		s.AnonymousBalances = b
	}

	return s
}
