package config

import "slices"

// MergeSettings layers a button override onto generic settings. The action
// list is concatenated generic first, sections are merged key by key with the
// override winning, and scalars are replaced when set. Inputs are not modified.
func MergeSettings(base, override Settings) Settings {
	out := Settings{
		Messaging: mergeMessaging(base.Messaging, override.Messaging),
		Telephony: mergeTelephony(base.Telephony, override.Telephony),
		Server:    mergeServer(base.Server, override.Server),
		IdleReset: pick(base.IdleReset, override.IdleReset),
	}

	out.Actions = make([]ActionItemConfig, 0, len(base.Actions)+len(override.Actions))
	out.Actions = append(out.Actions, base.Actions...)
	out.Actions = append(out.Actions, override.Actions...)

	return out
}

func mergeMessaging(base, override MessagingSettings) MessagingSettings {
	return MessagingSettings{
		Token:        pick(base.Token, override.Token),
		Room:         pick(base.Room, override.Room),
		Moderators:   pickList(base.Moderators, override.Moderators),
		Participants: pickList(base.Participants, override.Participants),
	}
}

func mergeTelephony(base, override TelephonySettings) TelephonySettings {
	return TelephonySettings{
		AccountSID:            pick(base.AccountSID, override.AccountSID),
		AuthToken:             pick(base.AuthToken, override.AuthToken),
		CustomerServiceNumber: pick(base.CustomerServiceNumber, override.CustomerServiceNumber),
	}
}

func mergeServer(base, override ServerSettings) ServerSettings {
	return ServerSettings{
		Port:    pick(base.Port, override.Port),
		URL:     pick(base.URL, override.URL),
		Key:     pick(base.Key, override.Key),
		Default: pick(base.Default, override.Default),
	}
}

func pick[T comparable](base, override T) T {
	var zero T
	if override != zero {
		return override
	}
	return base
}

// pickList replaces a list inside a section rather than concatenating it.
func pickList(base, override []string) []string {
	if override != nil {
		return slices.Clone(override)
	}
	return slices.Clone(base)
}
