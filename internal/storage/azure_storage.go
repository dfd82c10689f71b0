package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// ArtifactStore persists per-pass perception artifacts for offline review:
// the compressed encoding and the full element list.
type ArtifactStore interface {
	StoreArtifacts(ctx context.Context, passID string, encoded string, elementsJSON []byte) error
}

type azureArtifactStore struct {
	client    *azblob.Client
	container string
}

// NewAzureArtifactStore creates an artifact store backed by Azure blob
// storage with shared-key credentials.
func NewAzureArtifactStore(accountName, accountKey, container string) (ArtifactStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureArtifactStore{client: client, container: container}, nil
}

// StoreArtifacts uploads the encoding and the element JSON under the pass
// identifier. The two blobs are independent; a failure on the second leaves
// the first in place.
func (s *azureArtifactStore) StoreArtifacts(ctx context.Context, passID string, encoded string, elementsJSON []byte) error {
	if _, err := s.client.UploadStream(ctx, s.container, passID+"/encoded.txt", strings.NewReader(encoded), nil); err != nil {
		return fmt.Errorf("upload of encoded map failed: %w", err)
	}
	if _, err := s.client.UploadStream(ctx, s.container, passID+"/elements.json", bytes.NewReader(elementsJSON), nil); err != nil {
		return fmt.Errorf("upload of element list failed: %w", err)
	}
	return nil
}
