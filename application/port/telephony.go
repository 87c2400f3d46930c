package port

import "context"

type TelephonyClient interface {
	SendSMS(ctx context.Context, from, to, body string) error
	PlaceCall(ctx context.Context, from, to, callbackURL string) error
}
