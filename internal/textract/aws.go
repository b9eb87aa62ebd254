package textract

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"records-backend/internal/blocks"
)

// AWSClient implements Client over Amazon Textract.
type AWSClient struct {
	api *awstextract.Client
}

// NewAWSClient builds a Textract-backed client for the given region.
func NewAWSClient(ctx context.Context, region string) (*AWSClient, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &AWSClient{api: awstextract.NewFromConfig(cfg)}, nil
}

// StartAnalysis submits a FORMS analysis job for a stored page image.
func (c *AWSClient) StartAnalysis(ctx context.Context, loc Location) (string, error) {
	out, err := c.api.StartDocumentAnalysis(ctx, &awstextract.StartDocumentAnalysisInput{
		DocumentLocation: documentLocation(loc),
		FeatureTypes:     []types.FeatureType{types.FeatureTypeForms},
	})
	if err != nil {
		return "", classify("start document analysis", err)
	}
	return aws.ToString(out.JobId), nil
}

// GetAnalysis polls a form-analysis job and converts its blocks.
func (c *AWSClient) GetAnalysis(ctx context.Context, jobID string) (Result, error) {
	out, err := c.api.GetDocumentAnalysis(ctx, &awstextract.GetDocumentAnalysisInput{
		JobId: aws.String(jobID),
	})
	if err != nil {
		return Result{}, classify("get document analysis", err)
	}
	res := Result{
		Status:  jobStatus(out.JobStatus),
		Message: aws.ToString(out.StatusMessage),
	}
	if res.Status == StatusSucceeded {
		res.Blocks = convertBlocks(out.Blocks)
	}
	return res, nil
}

// StartTextDetection submits a plain-text detection job.
func (c *AWSClient) StartTextDetection(ctx context.Context, loc Location) (string, error) {
	out, err := c.api.StartDocumentTextDetection(ctx, &awstextract.StartDocumentTextDetectionInput{
		DocumentLocation: documentLocation(loc),
	})
	if err != nil {
		return "", classify("start text detection", err)
	}
	return aws.ToString(out.JobId), nil
}

// GetTextDetection pings the job, then collects the full chunked result set
// once the provider reports success.
func (c *AWSClient) GetTextDetection(ctx context.Context, jobID string) (Result, error) {
	probe, err := c.api.GetDocumentTextDetection(ctx, &awstextract.GetDocumentTextDetectionInput{
		JobId:      aws.String(jobID),
		MaxResults: aws.Int32(1),
	})
	if err != nil {
		return Result{}, classify("get text detection", err)
	}
	res := Result{
		Status:  jobStatus(probe.JobStatus),
		Message: aws.ToString(probe.StatusMessage),
	}
	if res.Status != StatusSucceeded {
		return res, nil
	}

	all, err := Collect(ctx, func(ctx context.Context, token *string) ([]blocks.Block, *string, error) {
		out, err := c.api.GetDocumentTextDetection(ctx, &awstextract.GetDocumentTextDetectionInput{
			JobId:      aws.String(jobID),
			MaxResults: aws.Int32(maxChunkResults),
			NextToken:  token,
		})
		if err != nil {
			return nil, nil, classify("get text detection chunk", err)
		}
		return convertBlocks(out.Blocks), out.NextToken, nil
	})
	if err != nil {
		return Result{}, err
	}
	res.Blocks = all
	return res, nil
}

func documentLocation(loc Location) *types.DocumentLocation {
	return &types.DocumentLocation{
		S3Object: &types.S3Object{
			Bucket: aws.String(loc.Bucket),
			Name:   aws.String(loc.Key),
		},
	}
}

func jobStatus(s types.JobStatus) Status {
	switch s {
	case types.JobStatusSucceeded, types.JobStatusPartialSuccess:
		return StatusSucceeded
	case types.JobStatusFailed:
		return StatusFailed
	default:
		return StatusInProgress
	}
}

func convertBlocks(in []types.Block) []blocks.Block {
	out := make([]blocks.Block, 0, len(in))
	for _, b := range in {
		cb := blocks.Block{
			ID:              aws.ToString(b.Id),
			Type:            blocks.BlockType(b.BlockType),
			Text:            aws.ToString(b.Text),
			SelectionStatus: string(b.SelectionStatus),
		}
		for _, e := range b.EntityTypes {
			cb.EntityTypes = append(cb.EntityTypes, string(e))
		}
		if b.Geometry != nil && b.Geometry.BoundingBox != nil {
			box := b.Geometry.BoundingBox
			cb.Box = blocks.BoundingBox{
				Top:    float64(box.Top),
				Left:   float64(box.Left),
				Width:  float64(box.Width),
				Height: float64(box.Height),
			}
		}
		for _, rel := range b.Relationships {
			cb.Relationships = append(cb.Relationships, blocks.Relationship{
				Type: blocks.RelationshipType(rel.Type),
				IDs:  rel.Ids,
			})
		}
		out = append(out, cb)
	}
	return out
}

// classify folds provider errors into the package taxonomy. Document-shaped
// rejections are permanent; everything else is treated as transient and left
// to the next tick.
func classify(op string, err error) error {
	var (
		badDoc      *types.BadDocumentException
		tooLarge    *types.DocumentTooLargeException
		unsupported *types.UnsupportedDocumentException
		badObject   *types.InvalidS3ObjectException
	)
	switch {
	case errors.As(err, &badDoc), errors.As(err, &tooLarge),
		errors.As(err, &unsupported), errors.As(err, &badObject):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidDocument, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
}

var _ Client = (*AWSClient)(nil)
