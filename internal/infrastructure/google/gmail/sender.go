package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/google"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
)

// authenticatedUser addresses the mailbox of the authorized principal.
const authenticatedUser = "me"

type Sender struct {
	messages *gmailv1.UsersMessagesService
	executor *resilience.Executor
}

func New(service *gmailv1.Service, executor *resilience.Executor) *Sender {
	return &Sender{messages: service.Users.Messages, executor: executor}
}

func (s *Sender) Send(ctx context.Context, mail domain.Mail) error {
	if strings.TrimSpace(mail.To) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "gmail.send", fmt.Errorf("recipient is empty"))
	}
	raw, err := buildRawMessage(mail)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	msg := &gmailv1.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	call := func(callCtx context.Context) error {
		_, err := s.messages.Send(authenticatedUser, msg).Context(callCtx).Do()
		return err
	}
	if s.executor == nil {
		err = call(ctx)
	} else {
		err = s.executor.Execute(ctx, "gmail.send", call, resilience.SingleAttempt(google.ClassifyError))
	}
	return resilience.WrapTemporary("gmail.send", err, google.ClassifyError)
}
