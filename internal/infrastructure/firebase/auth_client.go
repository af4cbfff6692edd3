package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
)

// AuthClient wraps the Firebase Auth SDK as the identity verifier for both the
// REST surface and websocket admission.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

// VerifyToken resolves a bearer credential to a user id. Callers decide what a
// failure means; websocket admission treats it as anonymous.
func (f *AuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

func (f *AuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", err
	}

	return user.UID, nil
}

func (f *AuthClient) TestConnection(ctx context.Context) error {
	// Listing a single user exercises credentials and connectivity.
	iter := f.client.Users(ctx, "")
	_, err := iter.Next()
	if err == iterator.Done {
		return nil
	}
	return err
}
