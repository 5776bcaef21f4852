// Package libcal is a client for the Springshare LibCal 1.1 API.
//
// The client authenticates with the OAuth2 client credentials grant against
// {base}/oauth/token and reuses the token until it expires. It implements
// finder.Upstream:
//
//	client, err := libcal.NewClient(ctx, libcal.Config{
//		ClientID:     id,
//		ClientSecret: secret,
//	})
//	events, err := client.Events(ctx, 9404, "2024-03-15")
//
// Failed requests are reported as *TransportError, carrying the HTTP status and a
// prefix of the response body when a response arrived.
package libcal
