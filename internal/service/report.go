package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"emotionquest/internal/models"
)

// ReportService emails caregivers a progress summary when a learner
// levels up, via Amazon SES.
type ReportService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewReportService creates a report service. When fromEmail is empty the
// service is disabled and sends become no-ops.
func NewReportService(awsRegion, fromEmail, fromName string) (*ReportService, error) {
	if fromEmail == "" {
		log.Println("Report service disabled: SES_FROM_EMAIL not configured")
		return &ReportService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Report service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &ReportService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the report service is enabled
func (s *ReportService) IsEnabled() bool {
	return s.enabled
}

// SendLevelUpReport emails a caregiver that the learner reached a new
// level, with a short progress summary.
func (s *ReportService) SendLevelUpReport(ctx context.Context, toEmail, learnerName string, progress *models.PlayerProgress) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): level-up report to %s", toEmail)
		return nil
	}

	unlocked := make([]string, len(progress.UnlockedEmotions))
	for i, e := range progress.UnlockedEmotions {
		unlocked[i] = string(e)
	}

	subject := fmt.Sprintf("%s reached level %d!", learnerName, progress.CurrentLevel)
	textBody := fmt.Sprintf(
		"%s just reached level %d in EmotionQuest.\n\n"+
			"Total score: %d\n"+
			"Sessions played: %d\n"+
			"Best streak: %d\n"+
			"Overall accuracy: %.0f%%\n"+
			"Emotions unlocked: %s\n",
		learnerName, progress.CurrentLevel,
		progress.TotalScore, progress.TotalSessions, progress.BestStreak,
		progress.Accuracy()*100, strings.Join(unlocked, ", "),
	)
	htmlBody := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>%s reached level %d!</h2>
	<ul>
		<li>Total score: %d</li>
		<li>Sessions played: %d</li>
		<li>Best streak: %d</li>
		<li>Overall accuracy: %.0f%%</li>
		<li>Emotions unlocked: %s</li>
	</ul>
	<p style="font-size: 12px; color: #666;">This is an automated email from EmotionQuest. Please do not reply.</p>
</body>
</html>`,
		learnerName, progress.CurrentLevel,
		progress.TotalScore, progress.TotalSessions, progress.BestStreak,
		progress.Accuracy()*100, strings.Join(unlocked, ", "),
	)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *ReportService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	return nil
}
