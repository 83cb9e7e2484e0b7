// Package cognito signs users up and in against an AWS Cognito user pool.
package cognito

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"eventspot/logger"
)

var (
	ErrMissingCredentials = errors.New("cognito: email and password are required")
	ErrNoClientID         = errors.New("cognito: no app client id configured")
)

// ChallengeError means Cognito wants another step (for example a new
// password) before it issues tokens.
type ChallengeError struct {
	Challenge string
}

func (e *ChallengeError) Error() string {
	return "cognito: additional challenge required: " + e.Challenge
}

// API is the subset of the Cognito identity provider client used here.
type API interface {
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, optFns ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
}

type Client struct {
	api      API
	clientID string
}

func New(ctx context.Context, region, clientID string) (*Client, error) {
	if clientID == "" {
		return nil, ErrNoClientID
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("new: unable to load aws config: %w", err)
	}
	return NewWithAPI(cip.NewFromConfig(cfg), clientID), nil
}

func NewWithAPI(api API, clientID string) *Client {
	return &Client{api: api, clientID: clientID}
}

// Login runs USER_PASSWORD_AUTH and returns the ID token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		logger.Errorf(ctx, "cognito: login failed: %+v", err)
		return "", fmt.Errorf("login: %w", err)
	}
	if out.AuthenticationResult == nil || aws.ToString(out.AuthenticationResult.IdToken) == "" {
		return "", &ChallengeError{Challenge: string(out.ChallengeName)}
	}
	return aws.ToString(out.AuthenticationResult.IdToken), nil
}

// SignUp registers a user. phone must include the country code.
func (c *Client) SignUp(ctx context.Context, email, password, name, phone string) error {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	attrs := []types.AttributeType{{Name: aws.String("email"), Value: aws.String(email)}}
	if name != "" {
		attrs = append(attrs, types.AttributeType{Name: aws.String("name"), Value: aws.String(name)})
	}
	if phone != "" {
		attrs = append(attrs, types.AttributeType{Name: aws.String("phone_number"), Value: aws.String(phone)})
	}

	_, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(c.clientID),
		Username:       aws.String(email),
		Password:       aws.String(password),
		UserAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("signUp: %w", err)
	}
	return nil
}

func (c *Client) Confirm(ctx context.Context, email, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(strings.TrimSpace(email)),
		ConfirmationCode: aws.String(strings.TrimSpace(code)),
	})
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	return nil
}

func (c *Client) ResendCode(ctx context.Context, email string) error {
	_, err := c.api.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(strings.TrimSpace(email)),
	})
	if err != nil {
		return fmt.Errorf("resendCode: %w", err)
	}
	return nil
}
