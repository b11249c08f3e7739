package ses

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"jobextract/internal/domain"
	"jobextract/internal/email"
	"jobextract/internal/port"
)

// SendEmailAPI is the part of *sesv2.Client the sender uses.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client      SendEmailAPI
	fromAddress string
	fromName    string
	toAddresses []string
}

// NewSESSender creates a new SES-backed ReportSender.
func NewSESSender(ctx context.Context, region, fromAddress, fromName string, toAddresses []string) (port.ReportSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg), fromAddress, fromName, toAddresses)
}

// NewSESSenderWithClient creates a ReportSender around an existing client.
func NewSESSenderWithClient(client SendEmailAPI, fromAddress, fromName string, toAddresses []string) (port.ReportSender, error) {
	if len(toAddresses) == 0 {
		return nil, errors.New("ses sender requires at least one recipient")
	}
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddresses: toAddresses,
	}, nil
}

func (s *sesSender) SendBatchReport(ctx context.Context, report *domain.BatchReport) error {
	subject := email.Subject(report)
	htmlBody := email.HTMLBody(report)
	textBody := email.TextBody(report)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.toAddresses,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
