package domain

// DefaultRecordTTL is the TTL applied by the updater when a subdomain does
// not override it.
const DefaultRecordTTL = 300

// Settings are the global switches for the DNS update process.
type Settings struct {
	ARecords            bool `json:"a"`
	AAAARecords         bool `json:"aaaa"`
	PurgeUnknownRecords bool `json:"purgeUnknownRecords"`
	DefaultTTL          int  `json:"ttl"`
}

// DefaultSettings returns the settings applied to a freshly initialized
// store: A and AAAA updates on, no purging, 300s TTL.
func DefaultSettings() Settings {
	return Settings{ARecords: true, AAAARecords: true, DefaultTTL: DefaultRecordTTL}
}

// Validate checks the settings value ranges.
func (s Settings) Validate() error {
	return ValidateTTL(s.DefaultTTL)
}
