package disksdk

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mirrorbox/mirrorbox/internal/utils"
)

// ListFolder fetches the full contents of the remote folder as a
// name-to-mtime map. A 401 surfaces as ErrUnauthorized, any other
// non-success response as an *APIError with the backend message.
func (s *DiskSDK) ListFolder(ctx context.Context) (RemoteListing, error) {
	var list resourceList
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"path":   s.folder,
			"fields": "items",
			"limit":  listLimit,
		}).
		SetSuccessResult(&list).
		Get(resourcesPath)

	if err := handleAPIError(resp, err, "list folder"); err != nil {
		return nil, err
	}

	listing := make(RemoteListing, len(list.Embedded.Items))
	for _, item := range list.Embedded.Items {
		modified, err := time.Parse(time.RFC3339, item.Modified)
		if err != nil {
			return nil, fmt.Errorf("parse modified time of %q: %w", item.Name, err)
		}
		listing[item.Name] = modified
	}
	return listing, nil
}

// Upload stores a local file in the remote folder under name. It is a two
// phase operation: request a pre-signed upload URL for the target path,
// then PUT the file body to it. The overwrite flag must be false for files
// new to the remote folder and true for known existing ones.
func (s *DiskSDK) Upload(ctx context.Context, localPath, name string, overwrite bool) error {
	if !utils.FileExists(localPath) {
		return fmt.Errorf("upload %s: %w", name, ErrFileNotFound)
	}

	op := "upload " + name

	var dest uploadDestination
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("path", s.remotePath(name)).
		SetQueryParam("overwrite", strconv.FormatBool(overwrite)).
		SetSuccessResult(&dest).
		Get(uploadPath)

	if err := handleAPIError(resp, err, op); err != nil {
		return err
	}

	putResp, err := s.client.R().
		SetContext(ctx).
		SetFile("file", localPath).
		Put(dest.Href)

	return handleAPIError(putResp, err, op)
}

// Delete removes a file from the remote folder, permanently and
// synchronously. The backend confirms with 204.
func (s *DiskSDK) Delete(ctx context.Context, name string) error {
	op := "delete " + name

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("path", s.remotePath(name)).
		SetQueryParam("force_async", "False").
		SetQueryParam("permanently", "False").
		Delete(resourcesPath)

	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusNoContent {
		return newAPIError(resp, op)
	}
	return nil
}

// EnsureFolder checks that the remote folder exists and creates it when
// the check reports not found.
func (s *DiskSDK) EnsureFolder(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("path", s.folder).
		SetQueryParam("limit", "1").
		Get(resourcesPath)

	if err != nil {
		return &TransportError{Op: "check folder", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return s.createFolder(ctx)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("check folder: %w", ErrUnauthorized)
	case resp.IsErrorState():
		return newAPIError(resp, "check folder")
	}
	return nil
}

func (s *DiskSDK) createFolder(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("path", s.folder).
		Put(resourcesPath)

	if err != nil {
		return &TransportError{Op: "create folder", Err: err}
	}
	if resp.StatusCode != http.StatusCreated {
		return newAPIError(resp, "create folder")
	}
	return nil
}
