package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterGetter reads secrets by name.
type ParameterGetter interface {
	GetParameter(ctx context.Context, name string, decrypt bool) (string, error)
}

// ParameterStore reads parameters from AWS SSM Parameter Store using the
// default credential chain.
type ParameterStore struct {
	Timeout time.Duration
}

func NewParameterStore() *ParameterStore {
	return &ParameterStore{Timeout: 5 * time.Second}
}

// GetParameter fetches a single parameter value.
func (p *ParameterStore) GetParameter(ctx context.Context, name string, decrypt bool) (string, error) {
	if name == "" {
		return "", errors.New("empty parameter name")
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)

	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}

	return *result.Parameter.Value, nil
}

// ServiceAccountJSON returns the Google service-account key. In prod with a
// parameter name configured it is read from Parameter Store, otherwise from
// the local file.
func (f FirebaseConfig) ServiceAccountJSON(ctx context.Context, env string, params ParameterGetter) ([]byte, error) {
	if env == "prod" && f.ServiceAccountParam != "" {
		raw, err := params.GetParameter(ctx, f.ServiceAccountParam, true)
		if err != nil {
			return nil, fmt.Errorf("service account from parameter store: %w", err)
		}
		return []byte(raw), nil
	}

	raw, err := os.ReadFile(f.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return raw, nil
}
