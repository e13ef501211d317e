// Package services provides the tool service for Galaxy API operations.
//
// Galaxy exposes both tool execution and file upload through POST
// /api/tools: a regular run posts JSON naming the tool, while an upload
// posts multipart form data to the built-in upload1 tool.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"galaxy-sdk/models"
)

// UploadToolID is Galaxy's built-in upload tool
const UploadToolID = "upload1"

type ToolService struct {
	client ClientInterface
}

func NewToolService(client ClientInterface) *ToolService {
	return &ToolService{
		client: client,
	}
}

// FileUploadRequest describes a local file to upload into a history
type FileUploadRequest struct {
	HistoryID string
	Path      string

	// Name defaults to the file's base name
	Name string
	// FileType defaults to "auto" (Galaxy sniffs the datatype)
	FileType string
	// DBKey defaults to "?"
	DBKey string
}

// List retrieves the tool panel, grouped into sections
func (s *ToolService) List(ctx context.Context) ([]models.ToolSection, error) {
	var sections []models.ToolSection
	if err := getJSON(ctx, s.client, "/api/tools?in_panel=true", &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// Create runs a tool in a history and returns the created outputs. The
// outputs are usually not processed yet when this returns.
func (s *ToolService) Create(ctx context.Context, inputs *models.ToolInputs) (*models.ToolExecution, error) {
	body, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := s.client.NewRequest(ctx, http.MethodPost, "/api/tools", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return s.execute(req)
}

// Upload sends a local file to the upload1 tool
func (s *ToolService) Upload(ctx context.Context, upload *FileUploadRequest) (*models.ToolExecution, error) {
	file, err := os.Open(upload.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload file: %w", err)
	}
	defer file.Close()

	name := upload.Name
	if name == "" {
		name = filepath.Base(upload.Path)
	}
	fileType := upload.FileType
	if fileType == "" {
		fileType = "auto"
	}
	dbKey := upload.DBKey
	if dbKey == "" {
		dbKey = "?"
	}

	inputs, err := json.Marshal(map[string]string{
		"files_0|NAME": name,
		"files_0|type": "upload_dataset",
		"file_type":    fileType,
		"dbkey":        dbKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload inputs: %w", err)
	}

	// Buffered so the body can be replayed on retry.
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := []struct{ key, value string }{
		{"tool_id", UploadToolID},
		{"history_id", upload.HistoryID},
		{"inputs", string(inputs)},
	}
	for _, f := range fields {
		if err := writer.WriteField(f.key, f.value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f.key, err)
		}
	}
	part, err := writer.CreateFormFile("files_0|file_data", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := s.client.NewRequest(ctx, http.MethodPost, "/api/tools", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return s.execute(req)
}

func (s *ToolService) execute(req *http.Request) (*models.ToolExecution, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := s.client.CheckResponse(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("POST /api/tools: %w", err)
	}

	var execution models.ToolExecution
	if err := json.NewDecoder(resp.Body).Decode(&execution); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(execution.Outputs) == 0 {
		return nil, fmt.Errorf("tool run returned no outputs")
	}

	return &execution, nil
}
