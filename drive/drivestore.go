package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	jsonMimeType   = "application/json"
)

// Store implements ObjectStore against the Drive v3 API.
type Store struct {
	service *gdrive.Service
}

// NewStore wraps an authenticated Drive service.
func NewStore(service *gdrive.Service) *Store {
	return &Store{service: service}
}

// escapeQuery escapes single quotes for Drive query strings.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func (s *Store) FindDocument(ctx context.Context, name, containerID string) (*Document, error) {
	q := fmt.Sprintf("name='%s' and '%s' in parents and trashed=false",
		escapeQuery(name), escapeQuery(containerID))
	resp, err := s.service.Files.List().
		Q(q).
		Fields("files(id, name, mimeType)").
		Spaces("drive").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &StorageError{Op: "find", Name: name, Err: err}
	}
	if len(resp.Files) == 0 {
		return nil, nil
	}
	f := resp.Files[0]
	return &Document{ID: f.Id, Name: f.Name, MimeType: f.MimeType}, nil
}

func (s *Store) CreateDocument(ctx context.Context, name, containerID string, content []byte) (*Document, error) {
	meta := &gdrive.File{
		Name:     name,
		MimeType: jsonMimeType,
		Parents:  []string{containerID},
	}
	f, err := s.service.Files.Create(meta).
		Media(bytes.NewReader(content)).
		Fields("id, name, mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &StorageError{Op: "create", Name: name, Err: err}
	}
	return &Document{ID: f.Id, Name: f.Name, MimeType: f.MimeType}, nil
}

func (s *Store) UpdateDocument(ctx context.Context, id string, content []byte) (*Document, error) {
	f, err := s.service.Files.Update(id, &gdrive.File{}).
		Media(bytes.NewReader(content)).
		Fields("id, name, mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &StorageError{Op: "update", Name: id, Err: err}
	}
	return &Document{ID: f.Id, Name: f.Name, MimeType: f.MimeType}, nil
}

func (s *Store) ReadContent(ctx context.Context, id string) ([]byte, error) {
	resp, err := s.service.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, &StorageError{Op: "read", Name: id, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StorageError{Op: "read", Name: id, Err: err}
	}
	return data, nil
}

func (s *Store) ListContainers(ctx context.Context) ([]Container, error) {
	var containers []Container
	pageToken := ""
	for {
		call := s.service.Files.List().
			Q("mimeType='" + folderMimeType + "' and trashed=false").
			Fields("nextPageToken, files(id, name)").
			OrderBy("name").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		for _, f := range resp.Files {
			containers = append(containers, Container{ID: f.Id, Name: f.Name})
		}
		if resp.NextPageToken == "" {
			return containers, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (s *Store) CreateContainer(ctx context.Context, name, parentID string) (*Container, error) {
	meta := &gdrive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}
	f, err := s.service.Files.Create(meta).
		Fields("id, name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &StorageError{Op: "create", Name: name, Err: err}
	}
	return &Container{ID: f.Id, Name: f.Name}, nil
}

func (s *Store) ListDocuments(ctx context.Context, containerID string) ([]Document, error) {
	var docs []Document
	q := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(containerID))
	pageToken := ""
	for {
		call := s.service.Files.List().
			Q(q).
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, &StorageError{Op: "list", Name: containerID, Err: err}
		}
		for _, f := range resp.Files {
			docs = append(docs, Document{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
		}
		if resp.NextPageToken == "" {
			return docs, nil
		}
		pageToken = resp.NextPageToken
	}
}
