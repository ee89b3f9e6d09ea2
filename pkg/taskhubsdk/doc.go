/*
Package taskhubsdk provides the wire types of the TaskHub API and a small
client for it.

# Client vs Session

Client covers the public endpoints: registration, email verification,
login and password reset. A successful login yields a Session which sends
the session token as a bearer credential:

	client := taskhubsdk.NewClient("https://taskhub.example.com")

	res, err := client.Login(ctx, "ana@x.com", "password123")
	if err != nil {
		return err
	}
	if res.MFARequired {
		res, err = client.CompleteMFALogin(ctx, res.MFAToken, code)
		if err != nil {
			return err
		}
	}

	session := client.NewSession(res.Token)
	ws, err := session.CreateWorkspace(ctx, taskhubsdk.CreateWorkspaceRequest{
		Name:  "Platform",
		Color: "#0ea5e9",
	})

# Errors

Every non-2xx response is returned as *APIError carrying the HTTP status and
the "error" code from the body:

	var apiErr *taskhubsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == taskhubsdk.CodeEmailNotVerified {
		// ask the user to check their inbox
	}

The server uses the same APIError values to write its responses, so codes
and statuses cannot drift between the two sides.
*/
package taskhubsdk
