// Package drive provides the document-source adapter for Google Drive:
// recursive folder listing filtered to supported document types, byte
// download to local staging, and metadata lookup.
package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// File describes one document in the remote folder.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MIMEType     string `json:"mimeType"`
	Size         int64  `json:"size,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
}

// Source abstracts listing and fetching documents from the remote store.
type Source interface {
	// ListAll recursively enumerates supported files under the configured
	// root folder. Folders are traversed but not returned.
	ListAll(ctx context.Context) ([]File, error)
	// Download fetches a file's bytes to local staging and returns the path.
	Download(ctx context.Context, fileID, fileName string) (string, error)
	// GetMetadata returns metadata for one file.
	GetMetadata(ctx context.Context, fileID string) (*File, error)
}

const folderMIMEType = "application/vnd.google-apps.folder"

// supportedMIMETypes is the document-type allowlist for lead extraction.
var supportedMIMETypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/msword": true,
	"text/plain":         true,
	"text/csv":           true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
}

var supportedExtensions = []string{".pdf", ".docx", ".doc", ".txt", ".csv", ".xlsx", ".xls"}

// IsSupported reports whether a file is eligible for processing, by MIME
// type or extension.
func IsSupported(name, mimeType string) bool {
	if supportedMIMETypes[mimeType] {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Client is a read-only Google Drive client scoped to one folder.
type Client struct {
	svc      *drive.Service
	folderID string
	stageDir string
	log      *slog.Logger
}

// Config holds the Drive connection settings.
type Config struct {
	// CredentialsJSON is the service-account key material.
	CredentialsJSON []byte
	// FolderID is the root folder to sync from.
	FolderID string
}

// NewClient creates a Drive client using service-account credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if len(cfg.CredentialsJSON) == 0 {
		return nil, fmt.Errorf("drive credentials are required")
	}
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("drive folder ID is required")
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(cfg.CredentialsJSON),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		svc:      svc,
		folderID: cfg.FolderID,
		stageDir: filepath.Join(os.TempDir(), "lead-search-documents"),
		log:      slog.Default(),
	}, nil
}

// ListAll recursively enumerates supported files under the configured folder.
func (c *Client) ListAll(ctx context.Context) ([]File, error) {
	files, err := c.listFolder(ctx, c.folderID)
	if err != nil {
		return nil, err
	}

	subfolders, err := c.listSubfolders(ctx, c.folderID)
	if err != nil {
		c.log.Warn("failed to list subfolders", "folder", c.folderID, "error", err)
		return files, nil
	}

	for _, sub := range subfolders {
		subFiles, err := c.listFolder(ctx, sub)
		if err != nil {
			c.log.Warn("failed to list subfolder files", "folder", sub, "error", err)
			continue
		}
		files = append(files, subFiles...)
	}
	return files, nil
}

// listFolder pages through one folder and returns its supported files.
func (c *Client) listFolder(ctx context.Context, folderID string) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)

	var files []File
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, size, modifiedTime, webViewLink)").
			PageSize(100).
			OrderBy("modifiedTime desc").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		for _, f := range resp.Files {
			if f.MimeType == folderMIMEType || !IsSupported(f.Name, f.MimeType) {
				continue
			}
			files = append(files, File{
				ID:           f.Id,
				Name:         f.Name,
				MIMEType:     f.MimeType,
				Size:         f.Size,
				ModifiedTime: f.ModifiedTime,
				WebViewLink:  f.WebViewLink,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

// listSubfolders returns the IDs of direct subfolders.
func (c *Client) listSubfolders(ctx context.Context, folderID string) ([]string, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed = false", folderID, folderMIMEType)
	resp, err := c.svc.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1000).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Files))
	for _, f := range resp.Files {
		ids = append(ids, f.Id)
	}
	return ids, nil
}

// Download fetches a file's bytes into the staging directory and returns the
// local path. The caller owns cleanup of the returned file.
func (c *Client) Download(ctx context.Context, fileID, fileName string) (string, error) {
	if err := os.MkdirAll(c.stageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	localPath := filepath.Join(c.stageDir, fmt.Sprintf("%s_%s", fileID, filepath.Base(fileName)))
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("failed to write staging file: %w", err)
	}
	return localPath, nil
}

// GetMetadata returns metadata for one file.
func (c *Client) GetMetadata(ctx context.Context, fileID string) (*File, error) {
	f, err := c.svc.Files.Get(fileID).
		Fields("id, name, mimeType, size, modifiedTime, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file metadata for %s: %w", fileID, err)
	}
	return &File{
		ID:           f.Id,
		Name:         f.Name,
		MIMEType:     f.MimeType,
		Size:         f.Size,
		ModifiedTime: f.ModifiedTime,
		WebViewLink:  f.WebViewLink,
	}, nil
}

// CheckAccess verifies the configured folder is reachable.
func (c *Client) CheckAccess(ctx context.Context) error {
	_, err := c.svc.Files.Get(c.folderID).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("folder %s is not accessible: %w", c.folderID, err)
	}
	return nil
}
