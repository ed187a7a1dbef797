package settings

// Keys persisted in device_settings.
const (
	KeyCartToken               = "cart_token"
	KeyGuestCustomerID         = "guest_customer_id"
	KeyOnboardingComplete      = "onboarding_complete"
	KeyNotificationPromptShown = "notification_prompt_shown"
)

// FlagKeys are the boolean flags the presentation layer may read and write.
var FlagKeys = []string{KeyOnboardingComplete, KeyNotificationPromptShown}

// IsFlag reports whether key is a writable flag.
func IsFlag(key string) bool {
	for _, k := range FlagKeys {
		if k == key {
			return true
		}
	}
	return false
}
