// internal/common/aws/bedrock.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
)

// NewBedrockAgentRuntimeClient builds a Bedrock agent runtime client for
// knowledge-base retrieve-and-generate calls.
func NewBedrockAgentRuntimeClient(ctx context.Context, region string) (*bedrockagentruntime.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return bedrockagentruntime.NewFromConfig(cfg), nil
}
