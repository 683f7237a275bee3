// Package metadata discovers instance facts from the EC2 instance metadata
// service: the region the instance runs in and the CloudFormation stack it
// was launched from.
package metadata

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

// stackNameTagPath is the metadata path for the CloudFormation stack tag.
// Requires instance-metadata-tags to be enabled on the instance.
const stackNameTagPath = "tags/instance/aws:cloudformation:stack-name"

// Client answers region and stack-name queries from inside an instance.
type Client struct {
	imds *imds.Client
}

// New returns a client against the standard metadata endpoint.
func New() *Client {
	return &Client{imds: imds.New(imds.Options{})}
}

// NewWithEndpoint points the client at a custom metadata endpoint. Tests use
// this with a local HTTP server.
func NewWithEndpoint(endpoint string) *Client {
	return &Client{imds: imds.New(imds.Options{Endpoint: endpoint})}
}

// Region returns the region this instance runs in.
func (c *Client) Region(ctx context.Context) (string, error) {
	out, err := c.imds.GetRegion(ctx, &imds.GetRegionInput{})
	if err != nil {
		return "", fmt.Errorf("get region: %w", err)
	}
	return out.Region, nil
}

// StackName returns the name of the CloudFormation stack this instance
// belongs to.
func (c *Client) StackName(ctx context.Context) (string, error) {
	out, err := c.imds.GetMetadata(ctx, &imds.GetMetadataInput{Path: stackNameTagPath})
	if err != nil {
		return "", fmt.Errorf("get stack name: %w", err)
	}
	defer out.Content.Close()

	data, err := io.ReadAll(out.Content)
	if err != nil {
		return "", fmt.Errorf("read stack name: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
