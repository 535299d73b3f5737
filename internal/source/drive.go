package source

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/cardexhq/cardex/internal/cards"
	"github.com/cardexhq/cardex/internal/gauth"
)

const driveImageQuery = "(mimeType='image/jpeg' or mimeType='image/png' or mimeType='image/webp')"

// DriveSource reads card images from a Google Drive folder.
type DriveSource struct {
	svc       *drive.Service
	folderID  string
	recursive bool
}

// NewDriveSource builds a Drive-backed source. serviceAccount is either the
// service account JSON itself or a path to a file containing it.
func NewDriveSource(ctx context.Context, serviceAccount, folderID string, recursive bool) (*DriveSource, error) {
	creds, err := gauth.LoadServiceAccount(serviceAccount)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveSource{svc: svc, folderID: folderID, recursive: recursive}, nil
}

// Name identifies the source kind.
func (s *DriveSource) Name() string {
	return "drive"
}

// List enumerates image files in the folder, paginating through results and
// descending into subfolders when recursive is enabled.
func (s *DriveSource) List(ctx context.Context) ([]cards.ImageRef, error) {
	return s.listFolder(ctx, s.folderID)
}

func (s *DriveSource) listFolder(ctx context.Context, folderID string) ([]cards.ImageRef, error) {
	query := fmt.Sprintf("'%s' in parents and %s", folderID, driveImageQuery)

	var refs []cards.ImageRef
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, webViewLink)").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, mapDriveError("list", folderID, err)
		}

		for _, f := range resp.Files {
			refs = append(refs, cards.ImageRef{
				FileName: f.Name,
				FileID:   f.Id,
				FileLink: f.WebViewLink,
				Handle:   f.Id,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if s.recursive {
		subIDs, err := s.listSubfolders(ctx, folderID)
		if err != nil {
			return nil, err
		}
		for _, subID := range subIDs {
			subRefs, err := s.listFolder(ctx, subID)
			if err != nil {
				return nil, err
			}
			refs = append(refs, subRefs...)
		}
	}

	return refs, nil
}

func (s *DriveSource) listSubfolders(ctx context.Context, folderID string) ([]string, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='application/vnd.google-apps.folder'", folderID)

	resp, err := s.svc.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1000).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapDriveError("list subfolders", folderID, err)
	}

	ids := make([]string, 0, len(resp.Files))
	for _, f := range resp.Files {
		ids = append(ids, f.Id)
	}
	return ids, nil
}

// Fetch downloads the raw file contents.
func (s *DriveSource) Fetch(ctx context.Context, ref cards.ImageRef) ([]byte, error) {
	resp, err := s.svc.Files.Get(ref.Handle).Context(ctx).Download()
	if err != nil {
		return nil, mapDriveError("download", ref.FileName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &IOError{Op: "download", Name: ref.FileName, Err: err}
	}
	return data, nil
}

// HealthCheck verifies the Drive API is reachable with the configured
// credentials.
func (s *DriveSource) HealthCheck(ctx context.Context) error {
	_, err := s.svc.Files.List().PageSize(1).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("drive unreachable: %w", err)
	}
	return nil
}

func mapDriveError(op, name string, err error) error {
	if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 404 {
		return &NotFoundError{Name: name}
	}
	return &IOError{Op: op, Name: name, Err: err}
}

var _ Source = (*DriveSource)(nil)
