package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/core/ports"
)

const (
	StepUpload = "distribute.upload"
	StepShare  = "distribute.share"
	StepEmail  = "distribute.email"
)

const mailSubjectTemplate = "Hallo [NAME], dein Ergebnis ist da."

const shareMessageTemplate = `Hallo [NAME],
dein Ergebnis ist da – und wir freuen uns riesig, dich auf deiner Reise begleiten zu dürfen!
Tauche ein in deine ganz persönliche Analyse und entdecke, was in dir steckt.

Wir wünschen dir viel Freude mit deinen Erkenntnissen – und sind gespannt auf dein Feedback.
Gemeinsam starten wir in eine spannende Reise.

✨ Teile den Test mit deinen Liebsten
und erhaltet nicht nur neue Einsichten,
sondern auch 100 stärkende Affirmationen
als Geschenk von uns dazu.

👉 Hier geht's zum Test-Link zum Teilen
Link: http://bit.ly/4lmWTiX

Viel Spaß beim Entdecken –
und danke, dass du Teil dieser Reise bist 💫

Herzliche Grüße
Dein Chromatic Archetypes Team`

const mailBodyTemplate = `Hallo [NAME],
im Anhang findest du die gewünschte Datei.

Wir wünschen dir ganz viel Spaß mit deinem Ergebnis.

EIN GESCHENK
Wir würden uns freuen, wenn du uns kurz Bescheid gibst, dass du unser Ergebnis erhalten hast.

Ein "ich hab es erhalten" würde genügen.
Zum Dank gibts es noch ein Geschenk von uns.

Liebe Grüße
dein Chromatic Archetypes-Team`

// Distributor hands the generated document to the submitter.
type Distributor struct {
	store  ports.DocumentStore
	mailer ports.MailSender
	bcc    string
	logger *slog.Logger
}

func NewDistributor(store ports.DocumentStore, mailer ports.MailSender, bcc string, logger *slog.Logger) *Distributor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Distributor{
		store:  store,
		mailer: mailer,
		bcc:    strings.TrimSpace(bcc),
		logger: logger,
	}
}

// Distribute uploads the document and shares it with email. The returned
// link is set whenever the upload succeeded, even if sharing failed.
func (d *Distributor) Distribute(ctx context.Context, name string, archetype domain.Archetype, content []byte, email string) (string, error) {
	filename := domain.UploadFilename(name, archetype)
	file, err := d.store.Upload(ctx, filename, pdfMimeType, content)
	if err != nil {
		return "", stepError(StepUpload, fmt.Errorf("upload %q: %w", filename, err))
	}
	d.logger.Info("pdf uploaded", "file_id", file.ID, "link", file.WebViewLink)

	message := domain.ReplacePlaceholder(shareMessageTemplate, domain.NamePlaceholder, name)
	if err := d.store.GrantRead(ctx, file.ID, email, message); err != nil {
		return file.WebViewLink, stepError(StepShare, fmt.Errorf("share %s with %s: %w", file.ID, email, err))
	}
	d.logger.Info("pdf shared", "file_id", file.ID, "email", email)
	return file.WebViewLink, nil
}

// Notify mails the document to the submitter.
func (d *Distributor) Notify(ctx context.Context, email, name string, content []byte) error {
	if strings.TrimSpace(email) == "" {
		return stepError(StepEmail, domain.WrapError(domain.ErrInvalidInput, "send mail", errors.New("empty recipient")))
	}
	mail := domain.Mail{
		To:      email,
		Bcc:     d.bcc,
		Subject: domain.ReplacePlaceholder(mailSubjectTemplate, domain.NamePlaceholder, name),
		Body:    domain.ReplacePlaceholder(mailBodyTemplate, domain.NamePlaceholder, name),
		Attachments: []domain.Attachment{{
			Filename:    domain.AttachmentFilename(name),
			ContentType: pdfMimeType,
			Data:        content,
		}},
	}
	if err := d.mailer.Send(ctx, mail); err != nil {
		return stepError(StepEmail, fmt.Errorf("send mail to %s: %w", email, err))
	}
	d.logger.Info("email sent", "to", email)
	return nil
}
