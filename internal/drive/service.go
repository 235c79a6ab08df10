package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/retailpulse/internal/ingest"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType      = "application/vnd.google-apps.folder"
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	csvMimeType         = "text/csv"
)

// Service reads sales exports from Google Drive. It implements ingest.Source.
type Service struct {
	srv           *drive.Service
	defaultFolder string
}

func NewService(ctx context.Context, credentialsJSON, defaultFolder string) (*Service, error) {
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		drive.DriveReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	return NewServiceWithOptions(ctx, defaultFolder, option.WithHTTPClient(config.Client(ctx)))
}

// NewServiceWithOptions builds the Drive client from explicit client options.
func NewServiceWithOptions(ctx context.Context, defaultFolder string, opts ...option.ClientOption) (*Service, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}
	return &Service{srv: srv, defaultFolder: defaultFolder}, nil
}

func (s *Service) Name() string { return "drive" }

// List returns the files of a folder. Location is a folder ID, or a
// slash-separated path from the root when it starts with "/". An empty
// location means the configured default folder.
func (s *Service) List(ctx context.Context, location string) ([]ingest.File, error) {
	folderID, err := s.resolveFolder(ctx, location)
	if err != nil {
		return nil, err
	}

	var files []ingest.File
	err = s.srv.Files.List().
		Q(childrenQuery(folderID)).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, toFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}
	return files, nil
}

// Fetch downloads a file. Native Google Sheets are exported as CSV.
func (s *Service) Fetch(ctx context.Context, fileID string, w io.Writer) (ingest.File, error) {
	meta, err := s.srv.Files.Get(fileID).
		Fields("id, name, mimeType, modifiedTime, size").
		Context(ctx).
		Do()
	if err != nil {
		return ingest.File{}, fmt.Errorf("unable to get file %s: %w", fileID, err)
	}
	file := toFile(meta)

	var body io.ReadCloser
	if meta.MimeType == spreadsheetMimeType {
		resp, err := s.srv.Files.Export(fileID, csvMimeType).Context(ctx).Download()
		if err != nil {
			return file, fmt.Errorf("unable to export file %s: %w", fileID, err)
		}
		body = resp.Body
		file.MimeType = csvMimeType
	} else {
		resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return file, fmt.Errorf("unable to download file %s: %w", fileID, err)
		}
		body = resp.Body
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return file, fmt.Errorf("unable to read file %s: %w", fileID, err)
	}
	return file, nil
}

func (s *Service) resolveFolder(ctx context.Context, location string) (string, error) {
	switch {
	case location == "" && s.defaultFolder != "":
		return s.defaultFolder, nil
	case location == "":
		return "root", nil
	case strings.HasPrefix(location, "/"):
		return s.FindFolderByPath(ctx, location)
	default:
		return location, nil
	}
}

// FindFolderByPath walks path segments from the Drive root.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"
	for _, folder := range splitPath(path) {
		result, err := s.srv.Files.List().
			Q(folderQuery(currentID, folder)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}
		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}
		currentID = result.Files[0].Id
	}
	return currentID, nil
}

func toFile(f *drive.File) ingest.File {
	return ingest.File{
		Key:          f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		ModifiedTime: f.ModifiedTime,
	}
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func escapeQuery(v string) string {
	return strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `'`, `\'`)
}

func childrenQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed=false", escapeQuery(folderID), folderMimeType)
}

func folderQuery(parentID, name string) string {
	return fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
		escapeQuery(parentID), escapeQuery(name), folderMimeType)
}
