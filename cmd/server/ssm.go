package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/bremer-sv/camp-registration/api"
)

const adminTokenParamName = "/camp-registration/admin-token"

// fillSecretsFromSSM fills in settings that weren't provided through the
// environment. Env always wins; missing parameters are not an error so
// local runs work without any AWS access to SSM.
func fillSecretsFromSSM(ctx context.Context, settings *ServerSettings) error {
	if settings.Env != api.PROD || settings.AdminToken != "" {
		return nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to get aws config: %w", err)
	}

	ssmClient := ssm.NewFromConfig(cfg)

	token, err := getParameter(ctx, ssmClient, adminTokenParamName)
	if err != nil {
		return err
	}

	settings.AdminToken = token
	return nil
}

func getParameter(ctx context.Context, client *ssm.Client, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", nil
		}

		return "", fmt.Errorf("failed to get SSM parameter %q: %w", name, err)
	}

	return *out.Parameter.Value, nil
}
