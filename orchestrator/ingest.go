package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/lexframe/lexframe/internal/coreerr"
	"github.com/lexframe/lexframe/internal/idgen"
	"github.com/lexframe/lexframe/store"
	"github.com/lexframe/lexframe/tool"
)

// UploadRequest is the abstract "contract upload" input spec.md §6
// specifies as a transport-agnostic interface: a transport (out of
// scope here) decodes multipart form data into this shape and calls
// IngestContract.
type UploadRequest struct {
	Title        string
	ContractType *string
	FileName     string
	Content      []byte
}

// IngestContract stores an uploaded contract's blob and creates its
// Contract record, without running clause extraction — that happens
// on the next turn through the CONTRACT_PARSER agent, keeping upload
// a fast, synchronous operation independent of the model's latency.
func (o *Orchestrator) IngestContract(ctx context.Context, blobs tool.BlobStore, req UploadRequest) (*store.Contract, error) {
	if req.Title == "" {
		return nil, coreerr.New("orchestrator.Orchestrator", "IngestContract", coreerr.KindInvalidRequest, "title is required", nil)
	}
	if len(req.Content) == 0 {
		return nil, coreerr.New("orchestrator.Orchestrator", "IngestContract", coreerr.KindInvalidRequest, "uploaded content is empty", nil)
	}

	key := idgen.NewWithPrefix("blob")
	uri, err := blobs.Put(ctx, key, req.Content)
	if err != nil {
		return nil, coreerr.New("orchestrator.Orchestrator", "IngestContract", coreerr.KindInternal, "failed to store uploaded blob", fmt.Errorf("put %s: %w", req.FileName, err))
	}

	c := &store.Contract{
		ID:               idgen.NewWithPrefix("ctr"),
		Title:            req.Title,
		ContractType:     req.ContractType,
		UploadedAt:       time.Now(),
		FileURI:          uri,
		Status:           store.ContractUploaded,
		ComplianceStatus: store.ComplianceUnknown,
	}
	if err := o.Store.CreateContract(ctx, c); err != nil {
		return nil, coreerr.New("orchestrator.Orchestrator", "IngestContract", coreerr.KindInternal, "failed to create contract record", err)
	}
	return c, nil
}
