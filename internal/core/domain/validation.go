package domain

import (
	"regexp"
	"strings"
)

// TTL bounds accepted by Cloudflare for non-automatic records.
const (
	TTLMin = 60
	TTLMax = 86400
)

// ZoneIDLength is the length of a Cloudflare zone identifier.
const ZoneIDLength = 32

// MaxLabelLength is the DNS label length limit (RFC 1035).
const MaxLabelLength = 63

var (
	labelCharsRegex = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	hexRegex        = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	lowerHexRegex   = regexp.MustCompile(`^[0-9a-f]+$`)
	emailRegex      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateSubdomainName checks that name is a valid DNS label: 1-63
// characters, alphanumerics and hyphens only, no leading or trailing hyphen.
func ValidateSubdomainName(name string) error {
	if len(name) == 0 {
		return newValidationError("name", ReasonTooShort, "subdomain name must not be empty")
	}
	if len(name) > MaxLabelLength {
		return newValidationError("name", ReasonTooLong, "subdomain name exceeds %d characters", MaxLabelLength)
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return newValidationError("name", ReasonLeadingOrTrailingHyphen, "subdomain name must not start or end with a hyphen")
	}
	if !labelCharsRegex.MatchString(name) {
		return newValidationError("name", ReasonInvalidChars, "subdomain name may only contain letters, digits and hyphens")
	}
	return nil
}

// ValidateZoneID checks that zoneID is a 32-character lowercase hexadecimal
// string, the format Cloudflare uses for zone identifiers.
func ValidateZoneID(zoneID string) error {
	if len(zoneID) != ZoneIDLength {
		return newValidationError("zone_id", ReasonWrongLength, "zone id must be exactly %d characters", ZoneIDLength)
	}
	if !hexRegex.MatchString(zoneID) {
		return newValidationError("zone_id", ReasonNonHex, "zone id must be a hexadecimal string")
	}
	if !lowerHexRegex.MatchString(zoneID) {
		return newValidationError("zone_id", ReasonNotLowercase, "zone id must be lowercase")
	}
	return nil
}

// ValidateTTL checks that ttl is within Cloudflare's accepted range. The range
// is enforced even for proxied records, where the stored value is advisory.
func ValidateTTL(ttl int) error {
	if ttl < TTLMin {
		return newValidationError("ttl", ReasonBelowMinimum, "ttl must be at least %d seconds", TTLMin)
	}
	if ttl > TTLMax {
		return newValidationError("ttl", ReasonAboveMaximum, "ttl must be at most %d seconds", TTLMax)
	}
	return nil
}

// ValidateEmail performs a structural local@domain check. No MX or network
// verification is attempted.
func ValidateEmail(value string) error {
	if !emailRegex.MatchString(value) {
		return newValidationError("account_email", ReasonMalformedEmail, "'%s' is not a valid email address", value)
	}
	return nil
}

// ValidateAuthentication checks that auth carries at least one usable
// credential: a non-blank API token, a complete api_key/email pair, or both.
func ValidateAuthentication(auth Authentication) error {
	if auth.APIToken == "" && auth.APIKey == nil {
		return newValidationError("authentication", ReasonNoMethodProvided, "either api_token or api_key must be provided")
	}
	if auth.APIToken != "" && strings.TrimSpace(auth.APIToken) == "" {
		return newValidationError("api_token", ReasonEmptyToken, "api_token must not be blank")
	}
	if auth.APIKey != nil {
		if strings.TrimSpace(auth.APIKey.APIKey) == "" {
			return newValidationError("api_key", ReasonEmptyAPIKey, "api_key must not be blank")
		}
		if strings.TrimSpace(auth.APIKey.AccountEmail) == "" {
			return newValidationError("account_email", ReasonEmptyEmail, "account_email must not be blank")
		}
		if err := ValidateEmail(auth.APIKey.AccountEmail); err != nil {
			return err
		}
	}
	return nil
}
