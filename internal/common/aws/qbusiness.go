// internal/common/aws/qbusiness.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/qbusiness"
)

// NewQBusinessClient builds a Q Business client from the ambient AWS
// credential chain.
func NewQBusinessClient(ctx context.Context, region string) (*qbusiness.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return qbusiness.NewFromConfig(cfg), nil
}
