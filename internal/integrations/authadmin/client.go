package authadmin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

// cognitoAPI is the minimal Cognito interface required by Client.
// *cognitoidentityprovider.Client satisfies it.
type cognitoAPI interface {
	AdminDisableUser(ctx context.Context, in *cognito.AdminDisableUserInput, optFns ...func(*cognito.Options)) (*cognito.AdminDisableUserOutput, error)
	AdminEnableUser(ctx context.Context, in *cognito.AdminEnableUserInput, optFns ...func(*cognito.Options)) (*cognito.AdminEnableUserOutput, error)
}

// Client toggles the enabled flag on user-pool accounts.
type Client struct {
	api        cognitoAPI
	userPoolID string
}

func New(api cognitoAPI, userPoolID string) (*Client, error) {
	if api == nil {
		return nil, errors.New("authadmin: api must not be nil")
	}
	if strings.TrimSpace(userPoolID) == "" {
		return nil, errors.New("authadmin: user pool id must not be empty")
	}
	return &Client{api: api, userPoolID: userPoolID}, nil
}

// SetDisabled disables or re-enables sign-in for one account.
func (c *Client) SetDisabled(ctx context.Context, userID string, disabled bool) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("authadmin: user id must not be empty")
	}

	if disabled {
		_, err := c.api.AdminDisableUser(ctx, &cognito.AdminDisableUserInput{
			UserPoolId: aws.String(c.userPoolID),
			Username:   aws.String(userID),
		})
		if err != nil {
			return fmt.Errorf("authadmin: disable user %q: %w", userID, err)
		}
		return nil
	}

	_, err := c.api.AdminEnableUser(ctx, &cognito.AdminEnableUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(userID),
	})
	if err != nil {
		return fmt.Errorf("authadmin: enable user %q: %w", userID, err)
	}
	return nil
}
