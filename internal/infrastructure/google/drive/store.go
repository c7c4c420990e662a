package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/googleapi"
	drivev3 "google.golang.org/api/drive/v3"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/google"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
)

const maxExportBytes = 10 << 20

// Store copies templates, exports documents and shares uploads in Google Drive.
type Store struct {
	files       *drivev3.FilesService
	permissions *drivev3.PermissionsService
	folderID    string
	executor    *resilience.Executor
}

func New(service *drivev3.Service, folderID string, executor *resilience.Executor) *Store {
	return &Store{
		files:       service.Files,
		permissions: service.Permissions,
		folderID:    strings.TrimSpace(folderID),
		executor:    executor,
	}
}

func (s *Store) CopyTemplate(ctx context.Context, templateID, name string) (string, error) {
	file, err := resilience.Do(ctx, s.executor, "drive.copy", func(callCtx context.Context) (*drivev3.File, error) {
		return s.files.Copy(templateID, &drivev3.File{Name: name}).
			SupportsAllDrives(true).
			Fields("id").
			Context(callCtx).
			Do()
	}, google.ClassifyError)
	if err != nil {
		return "", wrap("drive.copy", err)
	}
	if file.Id == "" {
		return "", fmt.Errorf("drive copy returned no id")
	}
	return file.Id, nil
}

func (s *Store) Export(ctx context.Context, documentID, mimeType string) ([]byte, error) {
	content, err := resilience.Do(ctx, s.executor, "drive.export", func(callCtx context.Context) ([]byte, error) {
		resp, err := s.files.Export(documentID, mimeType).Context(callCtx).Download()
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read export body: %w", err)
		}
		if len(data) > maxExportBytes {
			return nil, fmt.Errorf("export exceeds %d bytes", maxExportBytes)
		}
		return data, nil
	}, google.ClassifyError)
	if err != nil {
		return nil, wrap("drive.export", err)
	}
	return content, nil
}

func (s *Store) Delete(ctx context.Context, documentID string) error {
	err := s.execute(ctx, "drive.delete", func(callCtx context.Context) error {
		return s.files.Delete(documentID).SupportsAllDrives(true).Context(callCtx).Do()
	})
	return wrap("drive.delete", err)
}

func (s *Store) Upload(ctx context.Context, name, mimeType string, content []byte) (domain.StoredFile, error) {
	meta := &drivev3.File{Name: name, MimeType: mimeType}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	file, err := resilience.Do(ctx, s.executor, "drive.upload", func(callCtx context.Context) (*drivev3.File, error) {
		return s.files.Create(meta).
			Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
			SupportsAllDrives(true).
			Fields("id", "webViewLink").
			Context(callCtx).
			Do()
	}, resilience.SingleAttempt(google.ClassifyError))
	if err != nil {
		return domain.StoredFile{}, wrap("drive.upload", err)
	}
	return domain.StoredFile{ID: file.Id, WebViewLink: file.WebViewLink}, nil
}

func (s *Store) GrantRead(ctx context.Context, fileID, email, message string) error {
	perm := &drivev3.Permission{
		Type:         "user",
		Role:         "reader",
		EmailAddress: email,
	}
	err := s.execute(ctx, "drive.share", func(callCtx context.Context) error {
		_, err := s.permissions.Create(fileID, perm).
			SendNotificationEmail(true).
			EmailMessage(message).
			SupportsAllDrives(true).
			Fields("id").
			Context(callCtx).
			Do()
		return err
	})
	return wrap("drive.share", err)
}

func (s *Store) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if s.executor == nil {
		return fn(ctx)
	}
	return s.executor.Execute(ctx, operation, fn, google.ClassifyError)
}

func wrap(operation string, err error) error {
	if err == nil {
		return nil
	}
	if google.IsNotFound(err) {
		return domain.WrapError(domain.ErrRecordNotFound, operation, err)
	}
	return resilience.WrapTemporary(operation, err, google.ClassifyError)
}
