package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"github.com/wayfind-ui/wayfind/internal/deploy"
)

func deployCmd() *cobra.Command {
	var (
		dir      string
		bucket   string
		prefix   string
		region   string
		endpoint string
		prune    bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish built assets to S3",
		Long: `Upload the built asset directory (route chunks and manifest) to an
S3 bucket. Chunks are uploaded before the manifest so clients never
see a manifest pointing at missing chunks; with --prune, objects from
earlier deploys that this run did not upload are deleted afterwards.

Credentials come from the standard AWS environment variables
(AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_SESSION_TOKEN).

Examples:
  wayfind deploy --dir dist --bucket my-assets
  wayfind deploy --dir dist --bucket my-assets --prefix app/ --prune
  wayfind deploy --dir dist --bucket my-assets --endpoint https://minio.local:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(dir, bucket, prefix, region, endpoint, prune)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "dist", "Built asset directory")
	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Target S3 bucket (required)")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Object key prefix")
	cmd.Flags().StringVarP(&region, "region", "r", "us-east-1", "AWS region")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint (for S3-compatible stores)")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete objects not uploaded by this run")
	cmd.MarkFlagRequired("bucket")

	return cmd
}

func runDeploy(dir, bucket, prefix, region, endpoint string, prune bool) error {
	client := s3.New(s3.Options{
		Region:      region,
		Credentials: credentialsFromEnv(),
		BaseEndpoint: func() *string {
			if endpoint == "" {
				return nil
			}
			return aws.String(endpoint)
		}(),
	})

	pub := deploy.NewPublisher(client, bucket, prefix)
	ctx := context.Background()

	info("publishing %s to s3://%s/%s", dir, bucket, prefix)
	result, err := pub.Publish(ctx, dir)
	if err != nil {
		errorMsg("publish failed")
		return err
	}
	success("uploaded %d objects (%d bytes)", len(result.Keys), result.Bytes)

	if prune {
		n, err := pub.Prune(ctx, result.Keys)
		if err != nil {
			errorMsg("prune failed")
			return err
		}
		success("pruned %d stale objects", n)
	}
	return nil
}

// credentialsFromEnv builds a static credentials provider from the standard
// AWS environment variables.
func credentialsFromEnv() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		key := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if key == "" || secret == "" {
			return aws.Credentials{}, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return aws.Credentials{
			AccessKeyID:     key,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})
}
